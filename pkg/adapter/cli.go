package adapter

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
)

const prompt = "vshell> "

// CLIAdapter is a line-oriented REPL against a remote server.
type CLIAdapter struct {
	addr string
	in   io.Reader
	out  io.Writer
}

func NewCLIAdapter(addr string) *CLIAdapter {
	return &CLIAdapter{addr: addr, in: os.Stdin, out: os.Stdout}
}

// SetIO replaces stdin and stdout.
func (a *CLIAdapter) SetIO(in io.Reader, out io.Writer) {
	a.in = in
	a.out = out
}

func (a *CLIAdapter) Start(ctx context.Context) error {
	client, err := Dial(ctx, a.addr)
	if err != nil {
		return err
	}
	defer client.Close()

	scanner := bufio.NewScanner(a.in)
	fmt.Fprintln(a.out, "Virtual shell. Type 'exit' to quit, prefix with 'ai' for plain English.")

	for {
		fmt.Fprint(a.out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(a.out)
			return scanner.Err()
		}
		text := strings.TrimSpace(scanner.Text())
		switch text {
		case "":
			continue
		case "exit", "quit":
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		resp, err := client.Exec(ctx, text)
		if err != nil {
			return err
		}
		if resp.Error != "" {
			fmt.Fprintf(a.out, "Error: %s\n", resp.Error)
			continue
		}
		if resp.Interpreted != "" {
			fmt.Fprintf(a.out, "(%s) %s\n", resp.Source, resp.Interpreted)
		}
		if resp.Out != "" {
			fmt.Fprintln(a.out, resp.Out)
		}
	}
}
