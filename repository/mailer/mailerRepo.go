package mailerrepo

import "context"

type SendReq struct {
	To      string
	Subject string
	Body    string
}

// Repo is the out-of-band notification channel. Delivery is best-effort:
// callers log failures and move on, the caller's transaction never
// depends on the outcome.
type Repo interface {
	Send(ctx context.Context, req SendReq) error
}
