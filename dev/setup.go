package main

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	devenv "github.com/ParkerCase/wildlife-conservation-tracker-sub003/dev/env"
	evidencedb "github.com/ParkerCase/wildlife-conservation-tracker-sub003/services/evidence/db"
)

func cmd(name string, args ...string) {
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	fmt.Printf("$ %s %s\n", name, strings.Join(args, " "))
	err := cmd.Run()
	if err != nil {
		os.Exit(1)
	}
}

func CreateLocalStack() error {
	err := os.Chdir("dev/local_stack")
	if err != nil {
		return err
	}
	cmd("docker", "compose", "up", "-d")
	return os.Chdir("../..")
}

func CreateEvidenceDB() error {
	path, err := devenv.ResolvePath("<dev_state>/wildguard.db")
	if err != nil {
		return err
	}

	_, err = os.Stat(path)
	if err == nil {
		fmt.Println("database already created at", path)
		return nil
	}

	fmt.Println("creating database at", path)
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return err
	}
	defer db.Close()
	_, err = db.Exec(evidencedb.Schema)
	return err
}

const localConfig = `// written by "go run ./dev", overrides wildguard.json5
{
  monitor: {
    schedule: "@every 10m",
    keywords: ["ivory", "pangolin scales"],
  },
  dashboard: {
    access_token: "dev",
  },
%s}
`

// points alerts at the fake smtp server of the local stack
const localSmtp = `  alerts: {
    email_level: "MEDIUM",
    smtp: {
      server: "localhost",
      port: 1025,
      email_address: "wildguard@localhost",
      recipients: ["ranger@localhost"],
    },
  },
`

func WriteLocalConfig(stack bool) error {
	const path = "wildguard.local.json5"
	_, err := os.Stat(path)
	if err == nil {
		slog.Info("keeping existing local config", "path", path)
		return nil
	}

	smtp := ""
	if stack {
		smtp = localSmtp
	}
	err = os.WriteFile(path, []byte(fmt.Sprintf(localConfig, smtp)), 0666)
	if err != nil {
		return err
	}
	slog.Info("wrote local config", "path", path)
	return nil
}
