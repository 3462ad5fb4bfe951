package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// termReadPassword reads without echo; tests replace it.
var termReadPassword = term.ReadPassword

// ReadLine writes "prompt: " to w and returns the next line from r without
// surrounding whitespace. A final line without a newline is accepted.
func ReadLine(r *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprintf(w, "%s: ", prompt); err != nil {
		return "", err
	}
	line, err := r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadPassword prompts on w and reads a password from the terminal without
// echo. The caller wipes the result.
func ReadPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return nil, err
	}
	pw, err := termReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	return pw, err
}

// AskYesNo reads a yes/no answer; only y or yes, in any case, is a yes.
func AskYesNo(r *bufio.Reader, question string, w io.Writer) (bool, error) {
	answer, err := ReadLine(r, question+" [y/N]", w)
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(answer)
	return answer == "y" || answer == "yes", nil
}

func wipe(b []byte) {
	clear(b)
}
