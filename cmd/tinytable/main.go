package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"

	"tinytable/internal/pkg/logging"
	"tinytable/internal/tinytable"
)

const cliName string = "tinytable"

type metaCommand int

const (
	Unknown metaCommand = iota + 1
	Help
	Exit
	Btree
	Constants
)

func isMetaCommand(inputBuffer string) bool {
	return len(inputBuffer) > 0 && inputBuffer[:1] == "."
}

func doMetaCommand(inputBuffer string) metaCommand {
	switch inputBuffer {
	case "help":
		return Help
	case "exit":
		return Exit
	case "btree":
		return Btree
	case "constants":
		return Constants
	default:
		return Unknown
	}
}

func parseInsert(fields []string) (tinytable.Row, error) {
	if len(fields) != 4 {
		return tinytable.Row{}, fmt.Errorf("usage: insert <id> <username> <email>")
	}
	id, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return tinytable.Row{}, fmt.Errorf("id must be a positive integer: %s", fields[1])
	}
	return tinytable.NewRow(uint32(id), fields[2], fields[3])
}

func executeStatement(ctx context.Context, aDatabase *tinytable.Database, inputBuffer string) error {
	fields := strings.Fields(inputBuffer)
	if len(fields) == 0 {
		return nil
	}

	switch strings.ToLower(fields[0]) {
	case "insert":
		aRow, err := parseInsert(fields)
		if err != nil {
			return err
		}
		if err := aDatabase.Insert(ctx, aRow); err != nil {
			return err
		}
		fmt.Println("Executed.")
		return nil
	case "select":
		aResult, err := aDatabase.Select(ctx)
		if err != nil {
			return err
		}
		aRow, err := aResult.Rows(ctx)
		for ; err == nil; aRow, err = aResult.Rows(ctx) {
			fmt.Printf("(%d, %s, %s)\n", aRow.ID, aRow.Username, aRow.Email)
		}
		if !errors.Is(err, tinytable.ErrNoMoreRows) {
			return err
		}
		fmt.Println("Executed.")
		return nil
	default:
		return fmt.Errorf("unrecognized statement: %s", fields[0])
	}
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if len(os.Args) < 2 {
		fmt.Println("Must supply a database filename.")
		os.Exit(1)
	}
	dbFileName := os.Args[1]

	level := os.Getenv("LOG_LEVEL")
	if level == "" {
		level = "info"
	}
	logger, err := logging.New(level)
	if err != nil {
		panic(err)
	}
	defer logger.Sync() // flushes buffer, if any

	aDatabase, err := tinytable.OpenDatabase(ctx, logger, dbFileName)
	if err != nil {
		panic(err)
	}

	rl, err := readline.New(cliName + "> ")
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	wg := new(sync.WaitGroup)
	wg.Add(1)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		defer wg.Done()
		// Unblock the signal wait below once the REPL loop returns
		defer func() { sigChan <- syscall.SIGTERM }()

		// REPL (Read-eval-print loop) start
		for {
			if ctx.Err() != nil {
				return
			}

			line, err := rl.Readline()
			if err == readline.ErrInterrupt {
				return
			} else if err == io.EOF {
				fmt.Println()
				return
			} else if err != nil {
				fmt.Printf("Error reading input: %s\n", err)
				return
			}

			inputBuffer := strings.TrimSpace(line)
			if inputBuffer == "" {
				continue
			}

			if isMetaCommand(inputBuffer) {
				switch doMetaCommand(strings.ToLower(inputBuffer[1:])) {
				case Help:
					fmt.Println(".help       - Show available commands")
					fmt.Println(".exit       - Closes program")
					fmt.Println(".btree      - Print the table's B-tree")
					fmt.Println(".constants  - Print on disk layout constants")
				case Exit:
					return
				case Btree:
					fmt.Println("Tree:")
					if err := aDatabase.Table().PrintTree(ctx, os.Stdout); err != nil {
						fmt.Printf("Error printing tree: %s\n", err)
					}
				case Constants:
					fmt.Println("Constants:")
					fmt.Print(tinytable.LayoutConstants())
				case Unknown:
					fmt.Printf("Unrecognized meta command: %s\n", inputBuffer)
				}
			} else if err := executeStatement(ctx, aDatabase, inputBuffer); err != nil {
				fmt.Printf("Error: %s\n", err)
			}
		}
	}()

	<-sigChan

	if err := aDatabase.Close(ctx); err != nil {
		fmt.Printf("error closing database: %s\n", err)
	}

	cancel()
	rl.Close()

	wg.Wait()
}
