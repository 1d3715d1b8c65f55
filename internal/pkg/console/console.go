// Package console is the output sink and input source of the interactive
// manager: styled printing, validated prompts, the service table and the
// screenful pager.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrInputClosed is returned once the input stream is exhausted or broken.
var ErrInputClosed = errors.New("input closed")

const defaultPageHeight = 24

// Console 交互终端
type Console struct {
	in         *bufio.Reader
	out        io.Writer
	inFile     *os.File
	outFile    *os.File
	inTTY      bool
	outTTY     bool
	pageHeight int
	Styles     Styles
}

// Option configures a Console.
type Option func(*Console)

// WithPageHeight fixes the pager height instead of asking the terminal.
func WithPageHeight(h int) Option {
	return func(c *Console) {
		if h > 0 {
			c.pageHeight = h
		}
	}
}

// New 创建终端; in/out 为 *os.File 且是终端时启用清屏与原始按键读取
func New(in io.Reader, out io.Writer, opts ...Option) *Console {
	c := &Console{
		in:  bufio.NewReader(in),
		out: out,
	}
	if f, ok := in.(*os.File); ok {
		c.inFile = f
		c.inTTY = isTerminal(f)
	}
	if f, ok := out.(*os.File); ok {
		c.outFile = f
		c.outTTY = isTerminal(f)
	}
	c.Styles = newStyles(lipgloss.NewRenderer(out))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Writer exposes the underlying output for streamed command output.
func (c *Console) Writer() io.Writer {
	return c.out
}

// Interactive reports whether both ends are attached to a terminal.
func (c *Console) Interactive() bool {
	return c.inTTY && c.outTTY
}

// Clear 清屏, 非终端输出时不做任何事
func (c *Console) Clear() {
	if c.outTTY {
		fmt.Fprint(c.out, "\x1b[H\x1b[2J")
	}
}

func (c *Console) Println(a ...any) {
	fmt.Fprintln(c.out, a...)
}

func (c *Console) Printf(format string, a ...any) {
	fmt.Fprintf(c.out, format, a...)
}

// Title prints a bold heading surrounded by blank lines.
func (c *Console) Title(text string) {
	fmt.Fprintf(c.out, "\n%s\n\n", c.Styles.Title.Render(text))
}

// MenuItem prints one numbered menu entry: "1. Start service".
func (c *Console) MenuItem(key, label string) {
	fmt.Fprintf(c.out, "%s %s\n", c.Styles.Key.Render(key+"."), label)
}

func (c *Console) Warn(format string, a ...any) {
	fmt.Fprintln(c.out, c.Styles.Warning.Render(fmt.Sprintf(format, a...)))
}

func (c *Console) Dim(format string, a ...any) {
	fmt.Fprintln(c.out, c.Styles.Dim.Render(fmt.Sprintf(format, a...)))
}

// Error prints err as a red "Error:" line.
func (c *Console) Error(err error) {
	fmt.Fprintf(c.out, "%s %v\n", c.Styles.Error.Render("Error:"), err)
}

// readLine reads one line without its terminator. A final line without a
// newline is still returned; only a read with no data yields ErrInputClosed.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil {
		if line != "" && errors.Is(err, io.EOF) {
			return strings.TrimRight(line, "\r\n"), nil
		}
		if errors.Is(err, io.EOF) {
			return "", ErrInputClosed
		}
		return "", fmt.Errorf("%w: %v", ErrInputClosed, err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// Ask 读取一行自由输入
func (c *Console) Ask(message string) (string, error) {
	fmt.Fprintf(c.out, "%s: ", c.Styles.Bold.Render(message))
	line, err := c.readLine()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Choose prompts until the answer is one of choices, matching letters
// case-insensitively, and returns the matching choice as listed.
func (c *Console) Choose(message string, choices []string) (string, error) {
	hint := c.Styles.Dim.Render("[" + compactChoices(choices) + "]")
	for {
		fmt.Fprintf(c.out, "%s %s: ", c.Styles.Bold.Render(message), hint)
		line, err := c.readLine()
		if err != nil {
			return "", err
		}
		answer := strings.TrimSpace(line)
		for _, ch := range choices {
			if strings.EqualFold(answer, ch) {
				return ch, nil
			}
		}
		fmt.Fprintln(c.out, c.Styles.Error.Render("Please select one of the available options"))
	}
}

// WaitEnter prints a dim hint and blocks until a line is read.
func (c *Console) WaitEnter(message string) error {
	fmt.Fprintln(c.out, c.Styles.Dim.Render("\n"+message))
	_, err := c.readLine()
	return err
}

// ReadKey returns a single keypress. On a terminal it switches to raw mode
// for the read; otherwise it takes the first rune of the next input line.
func (c *Console) ReadKey() (rune, error) {
	if c.inTTY && c.in.Buffered() == 0 {
		fd := int(c.inFile.Fd())
		state, err := term.MakeRaw(fd)
		if err == nil {
			defer term.Restore(fd, state)
			var b [1]byte
			if _, err := c.inFile.Read(b[:]); err != nil {
				return 0, fmt.Errorf("%w: %v", ErrInputClosed, err)
			}
			// Ctrl+C in raw mode arrives as a byte, not a signal.
			if b[0] == 0x03 {
				return 'q', nil
			}
			return rune(b[0]), nil
		}
	}

	line, err := c.readLine()
	if err != nil {
		return 0, err
	}
	if line == "" {
		return '\n', nil
	}
	return []rune(line)[0], nil
}

// PageHeight returns the number of lines per pager screen.
func (c *Console) PageHeight() int {
	if c.pageHeight > 0 {
		return c.pageHeight
	}
	if c.outTTY {
		if _, h, err := term.GetSize(int(c.outFile.Fd())); err == nil && h > 2 {
			return h
		}
	}
	return defaultPageHeight
}

// Width returns the terminal width, or 0 when unknown.
func (c *Console) Width() int {
	if c.outTTY {
		if w, _, err := term.GetSize(int(c.outFile.Fd())); err == nil {
			return w
		}
	}
	return 0
}

// compactChoices renders 1..N ranges compactly: "1-12/H/E".
func compactChoices(choices []string) string {
	var (
		parts   []string
		numbers []string
	)
	for _, ch := range choices {
		if isDigits(ch) {
			numbers = append(numbers, ch)
			continue
		}
		parts = append(parts, ch)
	}
	switch {
	case len(numbers) > 3:
		parts = append([]string{numbers[0] + "-" + numbers[len(numbers)-1]}, parts...)
	case len(numbers) > 0:
		parts = append(numbers, parts...)
	}
	return strings.Join(parts, "/")
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
