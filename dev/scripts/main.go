package main

import (
	"flag"
	"fmt"
	"os"
	"os/exec"
	"sort"
	"strings"
)

func printScripts() {
	fmt.Println("Scripts:")
	names := make([]string, 0, len(scriptMap))
	for key := range scriptMap {
		names = append(names, key)
	}
	sort.Strings(names)
	for _, key := range names {
		fmt.Println("\t" + key)
	}
}

func main() {
	flag.Parse()

	script := flag.Arg(0)
	fn, ok := scriptMap[script]
	if !ok {
		fmt.Printf(
			"you must specify a valid script, '%s' is not a valid script.\n",
			script,
		)
		printScripts()
		os.Exit(1)
	}

	fn()
}

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

var scriptMap = map[string]func(){
	"db:migrate": migrateDb,
	"db:sqlc":    generateQueries,
}

// brings an existing dev database up to date with the schema
func migrateDb() {
	cmd(
		"atlas", "schema", "apply",
		"-u", "sqlite://dev/.state/wildguard.db",
		"--to", "file://services/evidence/db/schema.sql",
		"--dev-url", "sqlite://dev?mode=memory",
	)
}

func generateQueries() {
	cmd("sqlc", "generate", "-f", "services/evidence/sqlc.yaml")
}
