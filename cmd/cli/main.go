// Command cli is a terminal client for the banking API: it signs in, shows
// the balance, submits transfers and prints the statement, using the same
// service layer as the HTTP server.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/contabank/contabank/infra/initializer"
	"github.com/contabank/contabank/pkg/app"
	"github.com/contabank/contabank/pkg/config"
	"github.com/contabank/contabank/pkg/money"
	transfersvc "github.com/contabank/contabank/pkg/service/transfer"
	"github.com/fatih/color"
	"golang.org/x/term"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		color.Red("Error: %v", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Println("Usage: cli <command> [arguments]")
	fmt.Println("Commands:")
	fmt.Println("  register <name> <email>")
	fmt.Println("  balance")
	fmt.Println("  transfer <destination_account_number> <amount> [description]")
	fmt.Println("  statement")
}

func run(cmd string, args []string) error {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	application := app.New(deps)
	if err := application.Start(ctx); err != nil {
		return err
	}
	defer application.Stop()

	switch cmd {
	case "register":
		if len(args) < 2 {
			return fmt.Errorf("usage: register <name> <email>")
		}
		password, err := promptPassword("Choose a password: ")
		if err != nil {
			return err
		}
		u, err := application.Auth.Register(ctx, args[0], args[1], password)
		if err != nil {
			return err
		}
		color.Green("Registered %s (%s)", args[0], u.Email)
		return nil
	case "balance":
		if err := login(ctx, application); err != nil {
			return err
		}
		return printBalance(application)
	case "transfer":
		if len(args) < 2 {
			return fmt.Errorf("usage: transfer <destination_account_number> <amount> [description]")
		}
		if err := login(ctx, application); err != nil {
			return err
		}
		return doTransfer(ctx, application, args)
	case "statement":
		if err := login(ctx, application); err != nil {
			return err
		}
		return printStatement(ctx, application)
	default:
		usage()
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

func login(ctx context.Context, application *app.App) error {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return err
	}
	password, err := promptPassword("Password: ")
	if err != nil {
		return err
	}
	if _, err := application.Auth.Login(ctx, strings.TrimSpace(email), password); err != nil {
		return err
	}
	if p := application.Store.Profile(); p != nil {
		color.Cyan("Welcome back, %s!", p.Name)
	}
	return nil
}

func promptPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	raw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func printBalance(application *app.App) error {
	acct := application.Store.Account()
	if acct == nil {
		return fmt.Errorf("no account loaded")
	}
	fmt.Printf("Account %s\n", acct.AccountNumber)
	color.Green("Balance: %s", money.FormatBRL(acct.Balance))
	return nil
}

func doTransfer(ctx context.Context, application *app.App, args []string) error {
	acct := application.Store.Account()
	if acct == nil {
		return fmt.Errorf("no account loaded")
	}
	description := ""
	if len(args) > 2 {
		description = args[2]
	}
	sess := application.Store.Session()
	result, err := application.Transfer.Run(ctx, sess.UserID, transfersvc.Request{
		SourceAccountID:          acct.ID,
		DestinationAccountNumber: args[0],
		Amount:                   args[1],
		Description:              description,
	})
	if err != nil {
		return err
	}
	color.Green("Transferred %s to account %s", money.FormatBRL(result.Amount), args[0])
	if result.RefreshedAccount != nil {
		fmt.Printf("New balance: %s\n", money.FormatBRL(result.RefreshedAccount.Balance))
	}
	if result.RefreshErr != nil {
		color.Yellow("Balance refresh failed; run `cli balance` to see the updated value")
	}
	return nil
}

func printStatement(ctx context.Context, application *app.App) error {
	acct := application.Store.Account()
	if acct == nil {
		return fmt.Errorf("no account loaded")
	}
	txs, err := application.Deps.Ledger.ListTransactions(ctx, acct.ID)
	if err != nil {
		return err
	}
	if len(txs) == 0 {
		fmt.Println("No transactions yet.")
		return nil
	}
	for i := range txs {
		tx := &txs[i]
		when := tx.CreatedAt.Format("02/01/2006 15:04")
		label := tx.Description
		if label == "" {
			label = "Transfer"
		}
		if tx.Incoming(acct.ID) {
			color.Green("%s  +%s  %s (from %s)", when, money.FormatBRL(tx.Amount), label, tx.SenderName)
		} else {
			color.Red("%s  -%s  %s", when, money.FormatBRL(tx.Amount), label)
		}
	}
	return nil
}
