package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dmitrijs2005/visitorhub/internal/client/client"
	"github.com/dmitrijs2005/visitorhub/internal/common"
	"github.com/dmitrijs2005/visitorhub/internal/netx"
	"github.com/dmitrijs2005/visitorhub/internal/server/models"
)

const maxAvatarSize = 5 << 20

var errNotLoggedIn = errors.New("not logged in, use 'login' or 'register' first")

// Seams for tests.
var (
	readFile   = os.ReadFile
	uploadFile = func(ctx context.Context, url, contentType string, body []byte) error {
		return netx.PutPresigned(ctx, nil, url, contentType, body)
	}
)

func (a *App) register(ctx context.Context) error {
	username, err := GetSimpleText(a.reader, "-Enter user name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	name, err := GetOptionalText(a.reader, "-Enter display name", a.out)
	if err != nil {
		return err
	}
	phone, err := GetOptionalText(a.reader, "-Enter phone", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	sess, err := a.api.Register(ctx, client.RegisterRequest{
		Username: username,
		Email:    email,
		Password: string(password),
		Name:     name,
		Phone:    phone,
	})
	if err != nil {
		return err
	}

	a.userName = sess.User.Username
	a.saveSession(ctx, sess.User.Username, sess.Token.AccessToken)
	fmt.Fprintf(a.out, "Registered %s\n", sess.User.Username)
	a.printToken(sess.Token)
	return nil
}

func (a *App) login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "-Enter user name or email", a.out)
	if err != nil {
		return err
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	sess, err := a.api.Login(ctx, userName, password)
	if err != nil {
		return err
	}

	a.userName = sess.User.Username
	a.saveSession(ctx, sess.User.Username, sess.Token.AccessToken)
	fmt.Fprintf(a.out, "Login successful, welcome %s (%d logins)\n", sess.User.Username, sess.User.LoginCount)
	a.printToken(sess.Token)
	return nil
}

func (a *App) me(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	v, err := a.api.Me(ctx)
	if err != nil {
		return err
	}
	a.printAccount(v)
	return nil
}

func (a *App) update(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var changes client.ProfileChanges
	var err error
	if changes.Name, err = GetOptionalText(a.reader, "-New display name", a.out); err != nil {
		return err
	}
	if changes.Phone, err = GetOptionalText(a.reader, "-New phone", a.out); err != nil {
		return err
	}
	if changes.Avatar, err = GetOptionalText(a.reader, "-New avatar URL", a.out); err != nil {
		return err
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	v, err := a.api.UpdateMe(ctx, changes)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Profile updated")
	a.printAccount(v)
	return nil
}

// list prints one page of visitors. args are optional skip, limit and status.
func (a *App) list(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	var skip, limit int
	var status string
	var err error
	if len(args) > 0 {
		if skip, err = strconv.Atoi(args[0]); err != nil {
			return fmt.Errorf("skip: %w", err)
		}
	}
	if len(args) > 1 {
		if limit, err = strconv.Atoi(args[1]); err != nil {
			return fmt.Errorf("limit: %w", err)
		}
	}
	if len(args) > 2 {
		status = args[2]
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	page, err := a.api.ListVisitors(ctx, skip, limit, status)
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "%d visitors (showing %d from %d):\n", page.Total, len(page.Visitors), page.Skip)
	for _, v := range page.Visitors {
		fmt.Fprintf(a.out, "  %s  %-20s %-30s %s\n", v.ID, v.Username, v.Email, v.Status)
	}
	return nil
}

// avatar uploads an image file as the visitor's avatar: the server presigns
// the upload and the file goes straight to object storage.
func (a *App) avatar(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if len(args) != 1 {
		return errors.New("usage: avatar <image file>")
	}
	path := args[0]

	data, err := readFile(path)
	if err != nil {
		return err
	}
	if len(data) > maxAvatarSize {
		return fmt.Errorf("avatar is larger than %d MB", maxAvatarSize>>20)
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	upload, err := a.api.AvatarUpload(ctx, filepath.Base(path))
	if err != nil {
		return err
	}

	if err := uploadFile(ctx, upload.UploadURL, mime.TypeByExtension(filepath.Ext(path)), data); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Avatar uploaded: %s\n", upload.AvatarURL)
	return nil
}

func (a *App) ping(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Server is up")
	return nil
}

func (a *App) logout(ctx context.Context) {
	a.api.SetToken("")
	a.userName = ""
	if a.sessions != nil {
		if err := a.sessions.Clear(ctx); err != nil {
			fmt.Fprintf(a.out, "warning: saved session not cleared: %v\n", err)
		}
	}
	fmt.Fprintln(a.out, "Logged out")
}

func (a *App) printToken(t models.TokenView) {
	fmt.Fprintf(a.out, "Access token (%s): %s\n", t.TokenType, t.AccessToken)
}

func (a *App) printAccount(v *models.AccountView) {
	fmt.Fprintf(a.out, "ID:          %s\n", v.ID)
	fmt.Fprintf(a.out, "Username:    %s\n", v.Username)
	fmt.Fprintf(a.out, "Email:       %s\n", v.Email)
	fmt.Fprintf(a.out, "Name:        %s\n", orDash(v.Profile.Name))
	fmt.Fprintf(a.out, "Phone:       %s\n", orDash(v.Profile.Phone))
	fmt.Fprintf(a.out, "Avatar:      %s\n", orDash(v.Profile.Avatar))
	fmt.Fprintf(a.out, "Status:      %s\n", v.Status)
	fmt.Fprintf(a.out, "Logins:      %d\n", v.LoginCount)
	fmt.Fprintf(a.out, "Last login:  %s\n", orDash(v.LastLoginAt))
	fmt.Fprintf(a.out, "Member since %s\n", v.CreatedAt)
}

func orDash(s *string) string {
	if s == nil || *s == "" {
		return "-"
	}
	return *s
}
