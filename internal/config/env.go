package config

import "github.com/joho/godotenv"

// envFiles are loaded in order. Variables already set in the process
// environment are never overwritten.
var envFiles = []string{".env", ".env.local"}

func loadEnvFiles() {
	for _, path := range envFiles {
		// A missing file is the common case.
		_ = godotenv.Load(path)
	}
}
