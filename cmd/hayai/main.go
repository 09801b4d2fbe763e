package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/vaginessa/HayaiLauncher/internal/config"
	"github.com/vaginessa/HayaiLauncher/internal/launchable"
	"github.com/vaginessa/HayaiLauncher/internal/session"
)

// consoleNotifier is the stand-in for the UI notification sink: it just
// records the last signal so the prompt can show it.
type consoleNotifier struct {
	last string
}

func (n *consoleNotifier) Changed()     { n.last = "changed" }
func (n *consoleNotifier) Invalidated() { n.last = "invalidated (no matches)" }

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to config.toml")
	queryArg := flag.String("query", "", "run one search and exit")
	listOnly := flag.Bool("list", false, "print the sorted list and exit")
	verbose := flag.Bool("verbose", false, "log to stderr")
	flag.Parse()

	if !*verbose {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hayai: %v\n", err)
		os.Exit(1)
	}

	notifier := &consoleNotifier{}
	sess, err := session.New(cfg, notifier)
	if err != nil {
		fmt.Fprintf(os.Stderr, "hayai: %v\n", err)
		os.Exit(1)
	}
	defer sess.Close()

	if err := sess.LoadAll(); err != nil {
		fmt.Fprintf(os.Stderr, "hayai: %v\n", err)
		os.Exit(1)
	}

	switch {
	case *listOnly:
		printEntries(sess.Collection().Entries())
	case *queryArg != "":
		printEntries(sess.Search(*queryArg))
	default:
		if err := sess.WatchChanges(); err != nil {
			fmt.Fprintf(os.Stderr, "hayai: watcher disabled: %v\n", err)
		}
		runPrompt(sess, notifier)
	}
}

// runPrompt is the interactive front end: each line filters the list,
// ":<n>" launches result n, ":pin <n>" toggles its pin, ":q" quits.
func runPrompt(sess *session.Session, notifier *consoleNotifier) {
	scanner := bufio.NewScanner(os.Stdin)
	results := sess.Search("")
	printEntries(results)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == ":q":
			return
		case strings.HasPrefix(line, ":pin "):
			if e := pickResult(results, strings.TrimPrefix(line, ":pin ")); e != nil {
				sess.SetPinned(e, !e.Pinned())
				results = sess.Search("")
				printEntries(results)
			}
		case strings.HasPrefix(line, ":"):
			if e := pickResult(results, line[1:]); e != nil {
				if err := sess.Launch(e); err != nil {
					fmt.Fprintf(os.Stderr, "hayai: %v\n", err)
				}
			}
		default:
			results = sess.Search(line)
			for _, e := range results {
				sess.RequestIcon(e)
			}
			printEntries(results)
			if notifier.last != "" {
				fmt.Printf("-- %s --\n", notifier.last)
			}
		}
	}
}

func pickResult(results []*launchable.Entry, arg string) *launchable.Entry {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err != nil || n < 0 || n >= len(results) {
		fmt.Fprintln(os.Stderr, "hayai: no such result")
		return nil
	}
	return results[n]
}

func printEntries(entries []*launchable.Entry) {
	for i, e := range entries {
		pin := " "
		if e.Pinned() {
			pin = "*"
		}
		fmt.Printf("%3d %s %-40s %s\n", i, pin, e.Label(), e.Identity())
	}
}
