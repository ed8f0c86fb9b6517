package notify

import (
	"net/url"
	"strings"

	"github.com/go-pkgz/notify"
)

// makeEmail creates email transport sending html messages via smtp
func makeEmail(sp SendersParams) *notify.Email {
	return notify.NewEmail(notify.SMTPParams{
		Host:        sp.SMTPHost,
		Port:        sp.SMTPPort,
		TLS:         sp.SMTPTLS,
		ContentType: "text/html",
		Charset:     "UTF-8",
		Username:    sp.SMTPUsername,
		Password:    sp.SMTPPassword,
		TimeOut:     sp.Timeout,
	})
}

// mailtoDestination makes mailto destination for the email transport,
// i.e. mailto:to@example.com,to2@example.com?from=from@example.com&subject=Subj
func mailtoDestination(to []string, from, subj string) string {
	q := url.Values{}
	if from != "" {
		q.Set("from", from)
	}
	if subj != "" {
		q.Set("subject", subj)
	}
	res := "mailto:" + strings.Join(to, ",")
	if len(q) > 0 {
		res += "?" + q.Encode()
	}
	return res
}
