package cmd

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

// menuItem is one entry of the interactive menu.
type menuItem struct {
	title string
	run   func(ctx context.Context, in *bufio.Reader, out io.Writer) error
}

var menuItems = []menuItem{
	{"Capture Face Images", func(ctx context.Context, in *bufio.Reader, _ io.Writer) error {
		return runCapture(ctx, "", in)
	}},
	{"Train Model", func(ctx context.Context, _ *bufio.Reader, _ io.Writer) error {
		return runTrain(ctx)
	}},
	{"Run Face Recognition", func(ctx context.Context, _ *bufio.Reader, _ io.Writer) error {
		return runPredict(ctx, defaultPredictSettings())
	}},
	{"Show Status", func(_ context.Context, _ *bufio.Reader, out io.Writer) error {
		return runStatus(out)
	}},
}

func displayMenu(out io.Writer) {
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out, "  Face Recognition Pipeline")
	fmt.Fprintln(out, "  Pigo landmarks + LBPH")
	fmt.Fprintln(out, strings.Repeat("=", 50))
	fmt.Fprintln(out)
	for i, item := range menuItems {
		fmt.Fprintf(out, "%d. %s\n", i+1, item.title)
	}
	fmt.Fprintf(out, "%d. Exit\n", len(menuItems)+1)
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 50))
}

// runMenu shows the numbered menu until the user exits, the input closes or ctx is
// cancelled. Failures of an entry were already reported and do not end the menu.
func runMenu(ctx context.Context, in io.Reader, out io.Writer) error {
	r := bufio.NewReader(in)
	exit := fmt.Sprint(len(menuItems) + 1)

	for ctx.Err() == nil {
		displayMenu(out)
		fmt.Fprintf(out, "\nSelect an option (1-%s): ", exit)
		line, err := r.ReadString('\n')
		choice := strings.TrimSpace(line)
		if err != nil && choice == "" {
			fmt.Fprintln(out, "\nExiting... Goodbye!")
			return nil
		}

		if choice == exit {
			fmt.Fprintln(out, "\nExiting... Goodbye!")
			return nil
		}
		item, ok := lookupMenu(choice)
		if !ok {
			fmt.Fprintln(out, "\nInvalid option. Please try again.")
		} else {
			_ = item.run(ctx, r, out)
		}
		fmt.Fprint(out, "\nPress Enter to continue...")
		r.ReadString('\n')
	}
	return nil
}

func lookupMenu(choice string) (menuItem, bool) {
	for i, item := range menuItems {
		if choice == fmt.Sprint(i+1) {
			return item, true
		}
	}
	return menuItem{}, false
}
