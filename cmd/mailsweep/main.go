package main

import (
	"github.com/joho/godotenv"
	"github.com/lu-zhengda/mailsweep/internal/cli"
)

func main() {
	// Missing .env is fine; credentials can come from the config file.
	_ = godotenv.Load()

	cli.Execute()
}
