package console

import (
	"fmt"
	"strings"
)

const morePrompt = "-- more (q to quit) --"

// Page writes lines one screenful at a time. Any key shows the next screen,
// q aborts. It returns false when the user quit before the end.
func (c *Console) Page(lines []string) (bool, error) {
	per := c.PageHeight() - 1
	if per < 1 {
		per = 1
	}

	for start := 0; start < len(lines); start += per {
		end := min(start+per, len(lines))
		for _, line := range lines[start:end] {
			fmt.Fprintln(c.out, line)
		}
		if end == len(lines) {
			break
		}

		fmt.Fprint(c.out, c.Styles.Dim.Render(morePrompt))
		key, err := c.ReadKey()
		if c.outTTY {
			fmt.Fprint(c.out, "\r\x1b[K")
		} else {
			fmt.Fprintln(c.out)
		}
		if err != nil {
			return false, err
		}
		if key == 'q' || key == 'Q' {
			return false, nil
		}
	}
	return true, nil
}

// PageText pages a block of captured command output.
func (c *Console) PageText(text string) (bool, error) {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return true, nil
	}
	return c.Page(strings.Split(text, "\n"))
}
