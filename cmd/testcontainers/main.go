package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/localnerve/farm-ledger/internal/testutil"
)

const usage = `Start a farm-ledger database container and keep it running until interrupted.

Usage:

  testcontainers [-h] [-a] [-f ENV_FILE] [-o OUT_FILE]

The container is described by DB_TYPE, DB_IMAGE, DB_DATABASE, DB_USER and DB_PASSWORD.
Its host connection settings are printed, or written to OUT_FILE so the server can use
them with ENV_FILE=OUT_FILE.

example
  testcontainers -f .env.mysql -o .env.local
  ENV_FILE=.env.local go run ./cmd/server

Flags:
`

func main() {
	envFile := flag.String("f", "", "load the container settings from this .env file")
	outFile := flag.String("o", "", "write the host connection settings to this .env file")
	withApp := flag.Bool("a", false, "also build and run the farm-ledger image against the database")
	flag.Usage = func() {
		fmt.Fprint(flag.CommandLine.Output(), usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if *envFile != "" {
		log.Printf("Loading environment variables from %s", *envFile)
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	ready := make(chan *testutil.TestContainers, 1)
	go func() {
		start := testutil.CreateDBTestContainer
		if *withApp {
			start = testutil.CreateAllTestContainers
		}
		testContainers, err := start(nil)
		if err != nil {
			log.Fatalf("Failed to create test containers: %v", err)
		}
		ready <- testContainers
	}()

	var testContainers *testutil.TestContainers
	select {
	case testContainers = <-ready:
		if err := publish(testContainers, *outFile); err != nil {
			log.Printf("Failed to publish connection settings: %v", err)
		}
	case sig := <-sigs:
		log.Printf("Received %v before the containers were ready", sig)
		return
	}

	sig := <-sigs
	log.Printf("Received %v, terminating test containers...", sig)
	testContainers.Terminate(nil)
}

// publish prints the settings a server on this host needs, or writes them to outFile
func publish(testContainers *testutil.TestContainers, outFile string) error {
	cfg := testContainers.HostConfig(nil)
	env := map[string]string{
		"DB_TYPE":     cfg.DBType,
		"DB_HOST":     cfg.DBHost,
		"DB_PORT":     cfg.DBPort,
		"DB_DATABASE": cfg.DBDatabase,
		"DB_USER":     cfg.DBUser,
		"DB_PASSWORD": cfg.DBPassword,
	}

	if outFile != "" {
		if err := godotenv.Write(env, outFile); err != nil {
			return err
		}
		log.Printf("Wrote connection settings to %s", outFile)
		return nil
	}

	content, err := godotenv.Marshal(env)
	if err != nil {
		return err
	}
	fmt.Println(content)
	return nil
}
