package main

import (
	"fmt"
	"os"

	"github.com/okvist/exhume/cmd/cmd"
	"github.com/okvist/exhume/internal/env"
)

func main() {
	printBanner()

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func printBanner() {
	fmt.Println("           _                          ")
	fmt.Println("  _____  _| |__  _   _ _ __ ___   ___ ")
	fmt.Println(" / _ \\ \\/ / '_ \\| | | | '_ ` _ \\ / _ \\")
	fmt.Println("|  __/>  <| | | | |_| | | | | | |  __/")
	fmt.Println(" \\___/_/\\_\\_| |_|\\__,_|_| |_| |_|\\___|")
	fmt.Println()
	fmt.Println("Forensic image inspection tool")
	fmt.Println()
	fmt.Printf("Version:   %s\n", env.Version)
	fmt.Printf("Commit:    %s\n", env.CommitHash)
	fmt.Printf("Build Time: %s\n", env.BuildTime)
	fmt.Println(" ")
}
