package cli

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dmitrijs2005/glider/internal/client/client"
	"github.com/dmitrijs2005/glider/internal/common"
	v1 "github.com/dmitrijs2005/glider/internal/contract/v1"
	"github.com/dmitrijs2005/glider/internal/cryptox"
	"github.com/dmitrijs2005/glider/internal/filex"
	"github.com/dmitrijs2005/glider/internal/netx"
)

const timeLayout = time.DateTime

// passwordFlags are shared by generate, insert and edit.
type passwordFlags struct {
	fs      *flag.FlagSet
	tail    string
	scopes  string
	length  int
	numbers bool
	upper   bool
	special bool
	secret  bool
}

func newPasswordFlags(name string, withConfig bool) *passwordFlags {
	p := &passwordFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	p.fs.SetOutput(io.Discard)
	p.fs.StringVar(&p.tail, "tail", "", "label shown in listings")
	p.fs.StringVar(&p.scopes, "scopes", "", "free-form scopes, e.g. sites the password is used on")
	if withConfig {
		p.fs.IntVar(&p.length, "length", 16, "password length")
		p.fs.BoolVar(&p.numbers, "numbers", false, "include digits")
		p.fs.BoolVar(&p.upper, "upper", false, "include uppercase letters")
		p.fs.BoolVar(&p.special, "special", false, "include special characters")
	} else {
		p.fs.BoolVar(&p.secret, "secret", false, "prompt for a new secret")
	}
	return p
}

func (p *passwordFlags) isSet(name string) bool {
	set := false
	p.fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func (p *passwordFlags) scopesPtr() *string {
	if !p.isSet("scopes") {
		return nil
	}
	s := p.scopes
	return &s
}

func (p *passwordFlags) configuration() v1.PasswordConfiguration {
	return v1.PasswordConfiguration{
		Length:                   p.length,
		IncludeNumbers:           p.numbers,
		IncludeUppercaseLetters:  p.upper,
		IncludeSpecialCharacters: p.special,
	}
}

func usage(format string) error {
	return fmt.Errorf("%w: usage: %s", common.ErrValidation, format)
}

// idArg takes the leading positional id and returns the remaining args.
func idArg(cmd string, args []string) (string, []string, error) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", nil, usage(cmd + " ID")
	}
	return args[0], args[1:], nil
}

func (a *App) Generate(ctx context.Context, args []string) error {
	p := newPasswordFlags("generate", true)
	if err := p.fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}

	id, secret, err := a.client.GeneratePassword(ctx, p.tail, p.scopesPtr(), p.configuration())
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password %s generated:\n%s\n", id, secret)
	return nil
}

func (a *App) Insert(ctx context.Context, args []string) error {
	p := newPasswordFlags("insert", true)
	if err := p.fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}

	secret, err := a.readSecret()
	if err != nil {
		return err
	}

	// without an explicit -length the server infers the configuration
	var cfg *v1.PasswordConfiguration
	if p.isSet("length") {
		c := p.configuration()
		cfg = &c
	}

	id, err := a.client.InsertPassword(ctx, p.tail, p.scopesPtr(), secret, cfg)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password %s saved\n", id)
	return nil
}

func (a *App) readSecret() (string, error) {
	return a.readConfirmed("Secret", v1.FieldSecret)
}

// readConfirmed prompts twice without echo and requires both entries to
// match.
func (a *App) readConfirmed(prompt, field string) (string, error) {
	first, err := GetPassword(prompt, a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(first)

	second, err := GetPassword("Repeat "+strings.ToLower(prompt), a.out)
	if err != nil {
		return "", err
	}
	defer common.WipeByteArray(second)

	if string(first) != string(second) {
		return "", common.NewFieldError(field, "entries do not match")
	}
	return string(first), nil
}

func (a *App) List(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	types := fs.String("type", "", "comma-separated types (GENERATED, INSERTED)")
	page := fs.Int("page", 1, "page number")
	size := fs.Int("size", 0, "page size, 0 for the server default")
	secrets := fs.Bool("secrets", false, "include secrets")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}

	req := &v1.ListPasswordsRequest{
		Keywords:       fs.Args(),
		Page:           *page,
		PageSize:       *size,
		IncludeSecrets: *secrets,
	}
	if *types != "" {
		for _, t := range strings.Split(*types, ",") {
			req.Types = append(req.Types, strings.ToUpper(strings.TrimSpace(t)))
		}
	}

	resp, err := a.client.ListPasswords(ctx, req)
	if err != nil {
		return err
	}

	if err := a.printPasswords(resp.Passwords, *secrets); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "page %d, %d of %d\n", resp.Page, len(resp.Passwords), resp.Total)
	return nil
}

func (a *App) printPasswords(passwords []v1.Password, withSecrets bool) error {
	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	header := "ID\tTYPE\tTAIL\tSCOPES\tUPDATED"
	if withSecrets {
		header += "\tSECRET"
	}
	fmt.Fprintln(tw, header)
	for _, p := range passwords {
		row := fmt.Sprintf("%s\t%s\t%s\t%s\t%s", p.PasswordID, p.Type, p.Tail, deref(p.Scopes), p.UpdatedAt.Local().Format(timeLayout))
		if withSecrets {
			row += "\t" + p.Secret
		}
		fmt.Fprintln(tw, row)
	}
	return tw.Flush()
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, _, err := idArg("show", args)
	if err != nil {
		return err
	}
	p, err := a.client.GetPassword(ctx, id)
	if err != nil {
		return err
	}

	c := p.Configuration
	fmt.Fprintf(a.out, "ID:      %s\n", p.PasswordID)
	fmt.Fprintf(a.out, "Type:    %s\n", p.Type)
	fmt.Fprintf(a.out, "Tail:    %s\n", p.Tail)
	fmt.Fprintf(a.out, "Scopes:  %s\n", deref(p.Scopes))
	fmt.Fprintf(a.out, "Policy:  length=%d numbers=%t upper=%t special=%t\n",
		c.Length, c.IncludeNumbers, c.IncludeUppercaseLetters, c.IncludeSpecialCharacters)
	fmt.Fprintf(a.out, "Created: %s\n", p.CreatedAt.Local().Format(timeLayout))
	fmt.Fprintf(a.out, "Updated: %s\n", p.UpdatedAt.Local().Format(timeLayout))
	return nil
}

func (a *App) Copy(ctx context.Context, args []string) error {
	id, _, err := idArg("copy", args)
	if err != nil {
		return err
	}
	secret, err := a.client.CopyPassword(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, secret)
	return nil
}

func (a *App) Refresh(ctx context.Context, args []string) error {
	id, _, err := idArg("refresh", args)
	if err != nil {
		return err
	}
	secret, err := a.client.RefreshPassword(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "New secret:\n%s\n", secret)
	return nil
}

func (a *App) Edit(ctx context.Context, args []string) error {
	id, rest, err := idArg("edit", args)
	if err != nil {
		return err
	}
	p := newPasswordFlags("edit", false)
	if err := p.fs.Parse(rest); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}

	req := &v1.EditPasswordRequest{PasswordID: id, Scopes: p.scopesPtr()}
	if p.isSet("tail") {
		tail := p.tail
		req.Tail = &tail
	}
	if p.secret {
		secret, err := a.readSecret()
		if err != nil {
			return err
		}
		req.Secret = &secret
	}

	if err := a.client.EditPassword(ctx, req); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password %s updated\n", id)
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, _, err := idArg("delete", args)
	if err != nil {
		return err
	}
	if !GetConfirmation(a.reader, fmt.Sprintf("Delete password %s?", id), a.out) {
		fmt.Fprintln(a.out, "Cancelled")
		return nil
	}
	if err := a.client.DeletePassword(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Password %s deleted\n", id)
	return nil
}

func (a *App) History(ctx context.Context, args []string) error {
	id, _, err := idArg("history", args)
	if err != nil {
		return err
	}
	events, err := a.client.History(ctx, id)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tEVENT\tDEVICE")
	for _, e := range events {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.EventDate.Local().Format(timeLayout), e.Type, e.DeviceID)
	}
	return tw.Flush()
}

func (a *App) Devices(ctx context.Context, args []string) error {
	devices, err := a.client.ListDevices(ctx)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DEVICE\tTYPE\tBRAND\tMODEL\tBROWSER\tLAST LOGIN\tACTIVE")
	for _, d := range devices {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%t\n",
			d.DeviceID, d.Type, d.Brand, d.Model, d.Browser, d.LastLogin.Local().Format(timeLayout), d.Active)
	}
	return tw.Flush()
}

func (a *App) Disconnect(ctx context.Context, args []string) error {
	id, _, err := idArg("disconnect", args)
	if err != nil {
		return err
	}
	if err := a.client.DisconnectDevice(ctx, id); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Device %s disconnected\n", id)
	return nil
}

// archiveDir is where "archive -save" stores downloads.
const archiveDir = "archives"

// download is a test seam for netx.DownloadPresigned.
var download = netx.DownloadPresigned

func (a *App) Archive(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("archive", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	save := fs.Bool("save", false, "download the sealed archive into ./"+archiveDir)
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}

	passphrase, err := a.readConfirmed("Archive passphrase", v1.FieldPassphrase)
	if err != nil {
		return err
	}

	resp, err := a.client.ArchiveVault(ctx, passphrase)
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Archive %s\nDownload (valid until %s):\n%s\n",
		resp.Key, resp.ExpiresAt.Local().Format(timeLayout), resp.URL)

	if !*save {
		return nil
	}

	data, err := download(ctx, resp.URL)
	if err != nil {
		return fmt.Errorf("%w: %s", client.ErrUnavailable, err.Error())
	}
	dir, err := filex.EnsureSubDir(archiveDir)
	if err != nil {
		return err
	}
	target := filepath.Join(dir, path.Base(resp.Key)+".sealed")
	if err := filex.WritePrivate(target, data); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Saved %d bytes to %s\n", len(data), target)
	return nil
}

// Unseal opens a saved archive locally with its passphrase and lists the
// passwords inside. The server is not contacted.
func (a *App) Unseal(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("unseal", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	secrets := fs.Bool("secrets", false, "show secrets")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %s", common.ErrValidation, err.Error())
	}
	if fs.NArg() != 1 {
		return usage("unseal [-secrets] FILE")
	}
	file := fs.Arg(0)

	sealed, err := os.ReadFile(file)
	if err != nil {
		return err
	}
	passphrase, err := GetPassword("Archive passphrase", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(passphrase)

	plain, err := cryptox.OpenArchive(passphrase, sealed)
	switch {
	case errors.Is(err, cryptox.ErrNotArchive):
		return fmt.Errorf("%s is not a vault archive", file)
	case errors.Is(err, cryptox.ErrOpen):
		return fmt.Errorf("cannot open %s: wrong passphrase or damaged file", file)
	case err != nil:
		return err
	}
	defer common.WipeByteArray(plain)

	var contents v1.ArchiveContents
	if err := json.Unmarshal(plain, &contents); err != nil {
		return fmt.Errorf("decode %s: %w", file, err)
	}

	fmt.Fprintf(a.out, "Archive of %s taken %s, %d passwords\n",
		contents.UserID, contents.CreatedAt.Local().Format(timeLayout), len(contents.Passwords))
	return a.printPasswords(contents.Passwords, *secrets)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
