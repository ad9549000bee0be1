package main

import (
	"fmt"
	"io"
	"os"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	os.Exit(run(os.Args, os.Stdin, os.Stdout, os.Stderr))
}

func run(args []string, stdin io.Reader, stdout io.Writer, stderr io.Writer) int {
	if len(args) < 2 {
		printUsage(stderr)
		return 1
	}
	switch args[1] {
	case "version":
		fmt.Fprintln(stdout, Version)
		return 0
	case "init":
		return runInit(stdin, stdout, stderr)
	case "run":
		configPath, vaultPath, err := parseRunFlags(args[2:])
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		return runBot(stdin, stdout, stderr, configPath, vaultPath)
	case "vault":
		if len(args) < 3 {
			printVaultUsage(stderr)
			return 1
		}
		return runVault(args[2:], stdin, stdout, stderr)
	default:
		printUsage(stderr)
		return 1
	}
}

// parseRunFlags parses --config and --vault from args after "run".
func parseRunFlags(args []string) (configPath, vaultPath string, err error) {
	configPath = defaultConfigPath
	vaultPath = defaultVaultPath
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--config":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--config requires a path argument")
			}
			configPath = args[i+1]
			i++
		case "--vault":
			if i+1 >= len(args) {
				return "", "", fmt.Errorf("--vault requires a path argument")
			}
			vaultPath = args[i+1]
			i++
		default:
			return "", "", fmt.Errorf("unknown flag %q", args[i])
		}
	}
	return configPath, vaultPath, nil
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: exia <command>")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  init      Write a default config and create the vault")
	fmt.Fprintln(w, "  run       Start the bot")
	fmt.Fprintln(w, "  vault     Manage encrypted credentials")
	fmt.Fprintln(w, "  version   Print version")
}
