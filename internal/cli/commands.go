package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/Balama2520/smart-mini-task-manager/internal/storage"
	"github.com/Balama2520/smart-mini-task-manager/internal/store"
)

const shortIDLen = 8

func shortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[:shortIDLen]
}

func cmdAdd(out, errOut io.Writer, sess *session, args []string) int {
	flagSet := flag.NewFlagSet("add", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	category := flagSet.StringP("category", "c", sess.cfg.DefaultCategory, "Category: work|study|personal")
	priority := flagSet.StringP("priority", "p", sess.cfg.DefaultPriority, "Priority: low|medium|high")
	due := flagSet.StringP("due", "d", "", "Due date (YYYY-MM-DD)")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "add:", err)
		return ExitUsage
	}
	if *due != "" {
		if _, err := time.Parse("2006-01-02", *due); err != nil {
			fmt.Fprintf(errOut, "add: invalid due date %q (want YYYY-MM-DD)\n", *due)
			return ExitUsage
		}
	}

	text := strings.Join(flagSet.Args(), " ")
	task, err := sess.st.Add(store.AddInput{
		Text:     text,
		Category: *category,
		Priority: *priority,
		Due:      *due,
	})
	if err != nil {
		// Empty text is a quiet no-op: nothing added, nothing reported.
		if errors.Is(err, store.ErrInvalid) {
			return ExitOK
		}
		fmt.Fprintln(errOut, "add:", err)
		return ExitInternal
	}
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "add:", err)
		return ExitInternal
	}
	// Full id so the caller can address the task unambiguously.
	fmt.Fprintf(out, "Added %s: %s\n", task.ID, task.Text)
	return ExitOK
}

func cmdList(out, errOut io.Writer, sess *session, args []string) int {
	flagSet := flag.NewFlagSet("ls", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	filter := flagSet.StringP("filter", "f", store.FilterAll, "Filter: all|today|work|study|personal")
	search := flagSet.StringP("search", "s", "", "Search text")
	sortKey := flagSet.String("sort", "", "Sort: newest|oldest|deadline|completed")
	asJSON := flagSet.Bool("json", false, "JSON output")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "ls:", err)
		return ExitUsage
	}

	list := store.Query(sess.st.Tasks(), store.QueryOptions{
		Filter: *filter,
		Search: *search,
		Sort:   *sortKey,
	})

	if *asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		_ = enc.Encode(list)
		return ExitOK
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "(no tasks)")
		return ExitOK
	}
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDONE\tTEXT\tCATEGORY\tPRIORITY\tDUE")
	for _, t := range list {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), done, t.Text, t.Category, t.Priority, t.Due)
	}
	_ = w.Flush()
	return ExitOK
}

func cmdDone(out, errOut io.Writer, sess *session, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "Usage: supertask done <id-prefix>")
		return ExitUsage
	}
	task, err := resolve(sess, args[0])
	if err != nil {
		return reportLookup(errOut, "done", err)
	}
	task, err = sess.st.Toggle(task.ID)
	if err != nil {
		return reportLookup(errOut, "done", err)
	}
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "done:", err)
		return ExitInternal
	}
	state := "Reopened"
	if task.Completed {
		state = "Completed"
	}
	fmt.Fprintf(out, "%s %s: %s\n", state, shortID(task.ID), task.Text)
	return ExitOK
}

func cmdEdit(out, errOut io.Writer, sess *session, args []string) int {
	flagSet := flag.NewFlagSet("edit", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	text := flagSet.StringP("text", "t", "", "New task text")
	category := flagSet.StringP("category", "c", "", "New category")
	priority := flagSet.StringP("priority", "p", "", "New priority")
	due := flagSet.StringP("due", "d", "", "New due date (YYYY-MM-DD)")
	clearDue := flagSet.Bool("clear-due", false, "Remove the due date")

	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "edit:", err)
		return ExitUsage
	}
	if flagSet.NArg() != 1 {
		fmt.Fprintln(errOut, "Usage: supertask edit <id-prefix> [flags]")
		return ExitUsage
	}
	if flagSet.Changed("due") && *clearDue {
		fmt.Fprintln(errOut, "edit: --due and --clear-due are mutually exclusive")
		return ExitUsage
	}
	if flagSet.Changed("due") {
		if _, err := time.Parse("2006-01-02", *due); err != nil {
			fmt.Fprintf(errOut, "edit: invalid due date %q (want YYYY-MM-DD)\n", *due)
			return ExitUsage
		}
	}

	task, err := resolve(sess, flagSet.Arg(0))
	if err != nil {
		return reportLookup(errOut, "edit", err)
	}

	in := store.EditInput{
		Text:     *text,
		Category: *category,
		Priority: *priority,
	}
	if flagSet.Changed("due") || *clearDue {
		in.DueSet = true
		if !*clearDue {
			in.Due = *due
		}
	}
	task, err = sess.st.Edit(task.ID, in)
	if err != nil {
		return reportLookup(errOut, "edit", err)
	}
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "edit:", err)
		return ExitInternal
	}
	fmt.Fprintf(out, "Updated %s: %s\n", shortID(task.ID), task.Text)
	return ExitOK
}

func cmdRemove(out, errOut io.Writer, sess *session, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "Usage: supertask rm <id-prefix>")
		return ExitUsage
	}
	task, err := resolve(sess, args[0])
	if err != nil {
		return reportLookup(errOut, "rm", err)
	}
	if !sess.st.Delete(task.ID) {
		fmt.Fprintln(errOut, "rm: not found")
		return ExitNotFound
	}
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "rm:", err)
		return ExitInternal
	}
	fmt.Fprintf(out, "Deleted %s: %s\n", shortID(task.ID), task.Text)
	return ExitOK
}

func cmdClear(out, errOut io.Writer, sess *session, args []string) int {
	flagSet := flag.NewFlagSet("clear", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	yes := flagSet.Bool("yes", false, "Confirm clearing all tasks")
	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "clear:", err)
		return ExitUsage
	}
	if !*yes {
		fmt.Fprintln(errOut, "clear: refusing to remove all tasks without --yes")
		return ExitUsage
	}
	n := sess.st.Len()
	sess.st.Clear()
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "clear:", err)
		return ExitInternal
	}
	fmt.Fprintf(out, "Cleared %d task(s)\n", n)
	return ExitOK
}

func cmdStats(out, errOut io.Writer, sess *session, args []string) int {
	m := store.ComputeMetrics(sess.st.Tasks(), sess.st.Meta(), time.Now())
	if name := sess.st.Meta().Name; name != "" {
		fmt.Fprintf(out, "Welcome back, %s\n", name)
	}
	fmt.Fprintf(out, "Total: %d | Completed: %d | Pending: %d\n", m.Total, m.Completed, m.Pending)
	fmt.Fprintf(out, "%d%% Completed\n", m.Percent)
	fmt.Fprintln(out, m.Message)
	fmt.Fprintf(out, "Streak: %d\n", m.Streak)
	fmt.Fprintln(out, m.Tip)
	if m.Celebrate {
		fmt.Fprintln(out, "*** All done, take a bow ***")
	}
	return ExitOK
}

// cmdName sets or shows the display name. With no argument and no stored
// name it prompts once interactively; a stored name is never re-prompted.
func cmdName(out, errOut io.Writer, sess *session, args []string) int {
	meta := sess.st.Meta()
	if len(args) > 0 {
		meta.Name = strings.TrimSpace(strings.Join(args, " "))
		if err := sess.save(); err != nil {
			fmt.Fprintln(errOut, "name:", err)
			return ExitInternal
		}
		fmt.Fprintf(out, "Hello, %s\n", meta.Name)
		return ExitOK
	}
	if meta.Name != "" {
		fmt.Fprintln(out, meta.Name)
		return ExitOK
	}

	// Prompting needs a real terminal; in a pipe the name just stays
	// unset.
	if !liner.TerminalSupported() {
		return ExitOK
	}
	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)
	name, err := line.Prompt("What should I call you? (optional) ")
	if err != nil {
		// Aborted prompt just means no name yet.
		return ExitOK
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return ExitOK
	}
	meta.Name = name
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "name:", err)
		return ExitInternal
	}
	fmt.Fprintf(out, "Hello, %s\n", name)
	return ExitOK
}

func cmdExport(out, errOut io.Writer, sess *session, args []string) int {
	flagSet := flag.NewFlagSet("export", flag.ContinueOnError)
	flagSet.SetOutput(io.Discard)
	outPath := flagSet.StringP("out", "o", "tasks-export.yaml", "Output file")
	if err := flagSet.Parse(args); err != nil {
		fmt.Fprintln(errOut, "export:", err)
		return ExitUsage
	}
	b, err := storage.ExportYAML(sess.st.Tasks())
	if err != nil {
		fmt.Fprintln(errOut, "export:", err)
		return ExitInternal
	}
	if err := os.WriteFile(*outPath, b, 0o644); err != nil {
		fmt.Fprintln(errOut, "export:", err)
		return ExitInternal
	}
	fmt.Fprintf(out, "Exported %d task(s) to %s\n", sess.st.Len(), *outPath)
	return ExitOK
}

func cmdImport(out, errOut io.Writer, sess *session, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(errOut, "Usage: supertask import <file>")
		return ExitUsage
	}
	b, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(errOut, "import:", err)
		return ExitInternal
	}
	n, err := sess.st.ImportMerge(b)
	if err != nil {
		fmt.Fprintln(errOut, "import failed:", err)
		return ExitUsage
	}
	if err := sess.save(); err != nil {
		fmt.Fprintln(errOut, "import:", err)
		return ExitInternal
	}
	fmt.Fprintf(out, "Import merged %d task(s)\n", n)
	return ExitOK
}

func resolve(sess *session, prefix string) (*store.Task, error) {
	return sess.st.FindByPrefix(prefix)
}

func reportLookup(errOut io.Writer, cmd string, err error) int {
	fmt.Fprintf(errOut, "%s: %v\n", cmd, err)
	if errors.Is(err, store.ErrNotFound) {
		return ExitNotFound
	}
	return ExitUsage
}
