// Package cli wires the task engine to the terminal: argument parsing,
// listing output, and the one-time identity prompt. All state flows
// through an explicit session; every mutating command saves through the
// storage collaborator before returning.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/Balama2520/smart-mini-task-manager/internal/storage"
	"github.com/Balama2520/smart-mini-task-manager/internal/store"
)

// Exit codes
const (
	ExitOK       = 0
	ExitUsage    = 2
	ExitNotFound = 3
	ExitInternal = 10
)

type session struct {
	dir *storage.Dir
	cfg storage.Config
	st  *store.Store
}

func openSession(root string) *session {
	dir := storage.Open(root)
	st := store.NewWithMeta(dir.LoadTasks(), dir.LoadMeta())
	return &session{dir: dir, cfg: dir.LoadConfig(), st: st}
}

func (s *session) save() error {
	if err := s.dir.SaveTasks(s.st.Tasks()); err != nil {
		return err
	}
	return s.dir.SaveMeta(s.st.Meta())
}

// Run executes one command and returns its exit code. out receives
// regular output, errOut diagnostics.
func Run(out, errOut io.Writer, args []string) int {
	root, rest, err := extractGlobalFlags(args)
	if err != nil {
		fmt.Fprintln(errOut, err.Error())
		return ExitUsage
	}

	if len(rest) == 0 {
		printHelp(out)
		return ExitUsage
	}

	cmd := rest[0]
	cmdArgs := rest[1:]

	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		printHelp(out)
		return ExitOK
	}

	sess := openSession(root)

	switch cmd {
	case "add":
		return cmdAdd(out, errOut, sess, cmdArgs)
	case "ls", "list":
		return cmdList(out, errOut, sess, cmdArgs)
	case "done", "toggle":
		return cmdDone(out, errOut, sess, cmdArgs)
	case "edit":
		return cmdEdit(out, errOut, sess, cmdArgs)
	case "rm", "delete":
		return cmdRemove(out, errOut, sess, cmdArgs)
	case "clear":
		return cmdClear(out, errOut, sess, cmdArgs)
	case "stats", "summary":
		return cmdStats(out, errOut, sess, cmdArgs)
	case "name":
		return cmdName(out, errOut, sess, cmdArgs)
	case "export":
		return cmdExport(out, errOut, sess, cmdArgs)
	case "import":
		return cmdImport(out, errOut, sess, cmdArgs)
	default:
		fmt.Fprintf(errOut, "Unknown command: %s\n\n", cmd)
		printHelp(errOut)
		return ExitUsage
	}
}

func printHelp(w io.Writer) {
	fmt.Fprint(w, `supertask — mini task manager (local, single user)

Usage:
  supertask [--root <path>] <command> [args]

Global flags:
  --root <path>    Store root (default: ~/.supertask or SUPERTASK_ROOT)

Commands:
  add "<text>" [--category work|study|personal] [--priority low|medium|high] [--due YYYY-MM-DD]
  ls [--filter all|today|work|study|personal] [--search <q>] [--sort newest|oldest|deadline|completed] [--json]
  done <id-prefix>
  edit <id-prefix> [--text <t>] [--category <c>] [--priority <p>] [--due YYYY-MM-DD|--clear-due]
  rm <id-prefix>
  clear --yes
  stats
  name [<name>]
  export [--out <file>]
  import <file>
  help
`)
}

// extractGlobalFlags strips the global flags and resolves the store root.
// A local .env is honored before the environment so per-directory stores
// are easy to pin.
func extractGlobalFlags(args []string) (string, []string, error) {
	_ = godotenv.Load()

	root := ""
	if env := os.Getenv("SUPERTASK_ROOT"); env != "" {
		root = env
	} else {
		home, _ := os.UserHomeDir()
		if home != "" {
			root = filepath.Join(home, ".supertask")
		} else {
			root = ".supertask"
		}
	}

	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		a := args[i]
		switch {
		case a == "--root":
			if i+1 >= len(args) {
				return "", nil, errors.New("--root requires a value")
			}
			root = args[i+1]
			i++
		case strings.HasPrefix(a, "--root="):
			root = strings.TrimPrefix(a, "--root=")
		default:
			out = append(out, a)
		}
	}
	return root, out, nil
}
