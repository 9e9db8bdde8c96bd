package services

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	types "github.com/yungbote/coursehub-backend/internal/domain"
	"github.com/yungbote/coursehub-backend/internal/pkg/pricing"
)

// MailTemplates renders the transactional emails.
type MailTemplates struct {
	AppName string
	BaseURL string
}

func (t MailTemplates) link(path string, q url.Values) string {
	base := strings.TrimRight(t.BaseURL, "/")
	if len(q) == 0 {
		return base + path
	}
	return base + path + "?" + q.Encode()
}

func (t MailTemplates) wrap(title string, paragraphs ...string) string {
	var b strings.Builder
	b.WriteString("<h2>" + html.EscapeString(title) + "</h2>")
	for _, p := range paragraphs {
		b.WriteString("<p>" + p + "</p>")
	}
	b.WriteString("<p>The " + html.EscapeString(t.AppName) + " team</p>")
	return b.String()
}

func (t MailTemplates) Verification(u *types.User, token string) MailMessage {
	link := t.link("/verify-email", url.Values{"token": {token}})
	return MailMessage{
		To:       u.Email,
		ToName:   u.FirstName,
		Subject:  "Confirm your email address!",
		Category: "verify_email",
		Text:     fmt.Sprintf("Hi %s,\n\nConfirm your email address by opening %s\n", u.FirstName, link),
		HTML: t.wrap("Hi "+u.FirstName+",",
			"Confirm your email address to activate your account.",
			fmt.Sprintf(`<a href="%s">Confirm email</a>`, html.EscapeString(link))),
	}
}

func (t MailTemplates) Credentials(u *types.User, password string) MailMessage {
	login := t.link("/signin", nil)
	return MailMessage{
		To:       u.Email,
		ToName:   u.FirstName,
		Subject:  "Welcome to " + t.AppName,
		Category: "credentials",
		Text: fmt.Sprintf("Hi %s,\n\nAn account with the role %s was created for you.\nEmail: %s\nPassword: %s\nSign in at %s and change your password.\n",
			u.FirstName, u.Role, u.Email, password, login),
		HTML: t.wrap("Hi "+u.FirstName+",",
			fmt.Sprintf("An account with the role <b>%s</b> was created for you.", html.EscapeString(string(u.Role))),
			fmt.Sprintf("Email: %s<br>Password: %s", html.EscapeString(u.Email), html.EscapeString(password)),
			fmt.Sprintf(`<a href="%s">Sign in</a> and change your password.`, html.EscapeString(login))),
	}
}

func (t MailTemplates) PasswordReset(u *types.User, token string) MailMessage {
	link := t.link("/reset-password", url.Values{"token": {token}})
	return MailMessage{
		To:       u.Email,
		ToName:   u.FirstName,
		Subject:  "Reset your password",
		Category: "reset_password",
		Text:     fmt.Sprintf("Hi %s,\n\nReset your password at %s\nIgnore this email if you did not ask for it.\n", u.FirstName, link),
		HTML: t.wrap("Hi "+u.FirstName+",",
			fmt.Sprintf(`<a href="%s">Reset your password</a>`, html.EscapeString(link)),
			"Ignore this email if you did not ask for it."),
	}
}

func (t MailTemplates) Contact(to, name, email, subject, message string) MailMessage {
	return MailMessage{
		To:       to,
		Subject:  "Contact message from " + name,
		Category: "contact",
		Text:     fmt.Sprintf("From: %s <%s>\nSubject: %s\n\n%s\n", name, email, subject, message),
		HTML: t.wrap(subject,
			fmt.Sprintf("From: %s &lt;%s&gt;", html.EscapeString(name), html.EscapeString(email)),
			html.EscapeString(message)),
	}
}

func (t MailTemplates) OrderComplete(u *types.User, trx *types.Transaction, titles []string) MailMessage {
	list := strings.Join(titles, ", ")
	items := make([]string, 0, len(titles))
	for _, title := range titles {
		items = append(items, "<li>"+html.EscapeString(title)+"</li>")
	}
	return MailMessage{
		To:       u.Email,
		ToName:   u.FirstName,
		Subject:  "Order complete! Start learning now.",
		Category: "order_complete",
		Text: fmt.Sprintf("Hi %s,\n\nYour payment of %s (ref %s) was received. You now have access to: %s\n",
			u.FirstName, pricing.FormattedPrice(trx.Amount), trx.Reference, list),
		HTML: t.wrap("Hi "+u.FirstName+",",
			fmt.Sprintf("Your payment of %s (ref %s) was received.", pricing.FormattedPrice(trx.Amount), html.EscapeString(trx.Reference)),
			"<ul>"+strings.Join(items, "")+"</ul>"),
	}
}

func (t MailTemplates) OrderCancelled(u *types.User, trx *types.Transaction) MailMessage {
	return MailMessage{
		To:       u.Email,
		ToName:   u.FirstName,
		Subject:  "Your order has been cancelled",
		Category: "order_cancelled",
		Text:     fmt.Sprintf("Hi %s,\n\nYour order with reference %s was cancelled. No payment was taken.\n", u.FirstName, trx.Reference),
		HTML: t.wrap("Hi "+u.FirstName+",",
			fmt.Sprintf("Your order with reference %s was cancelled. No payment was taken.", html.EscapeString(trx.Reference))),
	}
}
