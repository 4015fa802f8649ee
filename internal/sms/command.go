package sms

import (
	"strings"

	"github.com/offgrid-pay/offgridpay/internal/money"
)

// Command is the tagged union of everything a text message can ask for.
// Unknown input is its own variant, not a parse failure.
type Command interface {
	isCommand()
}

// LoginCommand starts the OTP flow: LOGIN <password>.
type LoginCommand struct {
	Password string
}

// VerifyCommand completes the OTP flow: VERIFY <code>.
type VerifyCommand struct {
	Code string
}

// TransferCommand moves funds: TRANSFER <amount> <address> <description> [<token>].
type TransferCommand struct {
	Amount      int64
	Address     string
	Description string
	Token       string
}

// BalanceCommand asks for the current balance: BALANCE.
type BalanceCommand struct{}

// HelpCommand asks for the usage menu: HELP.
type HelpCommand struct{}

// UnknownCommand is any first token the grammar does not recognize.
type UnknownCommand struct {
	Keyword string
}

func (LoginCommand) isCommand()    {}
func (VerifyCommand) isCommand()   {}
func (TransferCommand) isCommand() {}
func (BalanceCommand) isCommand()  {}
func (HelpCommand) isCommand()     {}
func (UnknownCommand) isCommand()  {}

// UsageError reports malformed arguments for a recognized command. It is a
// user-facing hint, not a protocol failure.
type UsageError struct {
	Hint string
}

func (e *UsageError) Error() string { return e.Hint }

// Parse extracts the first whitespace-delimited token, upper-cased, as the
// command and hands the remaining tokens to that command's grammar.
func Parse(body string) (Command, error) {
	fields := strings.Fields(strings.TrimSpace(body))
	if len(fields) == 0 {
		return UnknownCommand{}, nil
	}

	keyword := strings.ToUpper(fields[0])
	args := fields[1:]

	switch keyword {
	case "LOGIN":
		return parseLogin(args)
	case "VERIFY":
		return parseVerify(args)
	case "TRANSFER":
		return parseTransfer(args)
	case "BALANCE":
		return BalanceCommand{}, nil
	case "HELP":
		return HelpCommand{}, nil
	default:
		return UnknownCommand{Keyword: keyword}, nil
	}
}

func parseLogin(args []string) (Command, error) {
	if len(args) < 1 {
		return nil, &UsageError{Hint: "Invalid format. Please send: LOGIN <password>"}
	}
	return LoginCommand{Password: args[0]}, nil
}

func parseVerify(args []string) (Command, error) {
	if len(args) < 1 {
		return nil, &UsageError{Hint: "Invalid format. Please send: VERIFY <yourOTP>"}
	}
	code := args[0]
	for _, r := range code {
		if r < '0' || r > '9' {
			return nil, &UsageError{Hint: "Invalid OTP format. Please try again."}
		}
	}
	return VerifyCommand{Code: code}, nil
}

func parseTransfer(args []string) (Command, error) {
	if len(args) < 3 {
		return nil, &UsageError{Hint: "Invalid transfer format. Please send: TRANSFER <amount> <address> <description> <token>"}
	}

	amount, err := money.Parse(args[0])
	if err != nil {
		return nil, &UsageError{Hint: "Invalid amount. Please specify a positive number."}
	}

	cmd := TransferCommand{
		Amount:      amount,
		Address:     args[1],
		Description: args[2],
	}
	if len(args) > 3 {
		cmd.Token = args[3]
	}
	return cmd, nil
}
