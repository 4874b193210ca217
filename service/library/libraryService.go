package librarysvc

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DharaPatel007/NexusLibrary/model"
	borrowrepo "github.com/DharaPatel007/NexusLibrary/repository/borrow"
	catalogrepo "github.com/DharaPatel007/NexusLibrary/repository/catalog"
	mailerrepo "github.com/DharaPatel007/NexusLibrary/repository/mailer"
	profilerepo "github.com/DharaPatel007/NexusLibrary/repository/profile"
	reservationrepo "github.com/DharaPatel007/NexusLibrary/repository/reservation"
)

// errors used by controllers

type ErrCode string

const (
	ErrNotEligible     ErrCode = "NOT_ELIGIBLE"
	ErrAlreadyBorrowed ErrCode = "ALREADY_BORROWED"
	ErrNoCopies        ErrCode = "NO_COPIES_AVAILABLE"
	ErrNoOpenBorrow    ErrCode = "NO_OPEN_BORROW"
	ErrAlreadyReserved ErrCode = "ALREADY_RESERVED"
	ErrCopiesAvailable ErrCode = "COPIES_AVAILABLE"
	ErrItemNotFound    ErrCode = "ITEM_NOT_FOUND"
	ErrUnknownKind     ErrCode = "UNKNOWN_ITEM_KIND"
	ErrPaperAccess     ErrCode = "PAPER_ACCESS_DENIED"
)

type codedError struct {
	code ErrCode
	msg  string
}

func (e codedError) Error() string { return e.msg }
func (e codedError) Code() ErrCode { return e.code }

func makeErr(c ErrCode, msg string) error { return codedError{code: c, msg: msg} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

const finePerDay = 1.00

type Service interface {
	// Borrow checks eligibility and stock, then writes a ledger entry.
	Borrow(ctx context.Context, userID int64, ref model.ItemRef) (string, error)

	// Return closes the open ledger entry, computes the fine and frees
	// the copy; the reservation queue is serviced afterwards.
	Return(ctx context.Context, userID int64, ref model.ItemRef, returnDate *time.Time) (string, error)

	// Reserve queues a user for a fully checked-out printed book.
	Reserve(ctx context.Context, userID, bookID int64) (string, error)

	RequestPaperAccess(ctx context.Context, userID, paperID int64) (string, error)
	MyHistory(ctx context.Context, userID int64) ([]borrowrepo.HistoryRow, error)
	RoleOf(ctx context.Context, userID int64) (model.Role, error)
}

type service struct {
	db   *sql.DB
	cat  catalogrepo.Repo
	pr   profilerepo.Repo
	br   borrowrepo.Repo
	rr   reservationrepo.Repo
	mail mailerrepo.Repo
	log  *slog.Logger

	now   func() time.Time
	runTx func(ctx context.Context, fn func(tx *sql.Tx) error) error
}

func New(db *sql.DB, cat catalogrepo.Repo, pr profilerepo.Repo, br borrowrepo.Repo, rr reservationrepo.Repo, mail mailerrepo.Repo, log *slog.Logger) Service {
	s := &service{db: db, cat: cat, pr: pr, br: br, rr: rr, mail: mail, log: log, now: time.Now}
	s.runTx = s.withTx
	return s
}

func (s *service) withTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// fineFor applies the overdue policy: only printed books and research
// papers accrue fines, at a flat rate per day past due.
func fineFor(kind model.ItemKind, dueDate, returnDate time.Time) float64 {
	if !kind.Finable() {
		return 0
	}
	daysLate := int(dateOf(returnDate).Sub(dateOf(dueDate)).Hours() / 24)
	if daysLate <= 0 {
		return 0
	}
	return float64(daysLate) * finePerDay
}

func (s *service) resolve(ctx context.Context, ref model.ItemRef) (*model.Item, error) {
	if _, ok := model.ParseItemKind(string(ref.Kind)); !ok {
		return nil, makeErr(ErrUnknownKind, "Invalid item type.")
	}
	item, err := s.cat.Resolve(ctx, ref)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, makeErr(ErrItemNotFound, "Item not found.")
	}
	if err != nil {
		return nil, err
	}
	return item, nil
}

// createBorrow writes the ledger entry. A roleless user is given a
// Student profile on first write, the compatibility default.
func (s *service) createBorrow(ctx context.Context, tx *sql.Tx, userID int64, ref model.ItemRef, role model.Role) (*model.Borrowing, error) {
	if role == model.RoleUnknown {
		if err := s.pr.CreateTx(ctx, tx, userID, model.RoleStudent); err != nil {
			return nil, err
		}
		role = model.RoleStudent
	}
	today := dateOf(s.now())
	b := &model.Borrowing{
		UserID:     userID,
		ItemKind:   ref.Kind,
		ItemID:     ref.ID,
		BorrowDate: today,
		DueDate:    today.AddDate(0, 0, role.BorrowDuration()),
	}
	if err := s.br.Insert(ctx, tx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *service) Borrow(ctx context.Context, userID int64, ref model.ItemRef) (string, error) {
	if userID <= 0 {
		return "", makeErr(ErrNotEligible, "Borrowing limit reached or user not allowed to borrow.")
	}
	if _, err := s.resolve(ctx, ref); err != nil {
		return "", err
	}

	err := s.runTx(ctx, func(tx *sql.Tx) error {
		role, err := s.pr.RoleOfTx(ctx, tx, userID)
		if err != nil {
			return err
		}
		open, err := s.br.OpenCount(ctx, tx, userID)
		if err != nil {
			return err
		}
		// Unknown roles and guests have limit 0 and can never pass.
		if open >= role.BorrowLimit() {
			return makeErr(ErrNotEligible, "Borrowing limit reached or user not allowed to borrow.")
		}

		taken, err := s.br.HasOpen(ctx, tx, userID, ref)
		if err != nil {
			return err
		}
		if taken {
			return makeErr(ErrAlreadyBorrowed, "Item already borrowed by this user.")
		}

		if ref.Kind == model.KindPrintedBook {
			ok, err := s.cat.TryDecrementCopies(ctx, tx, ref.ID)
			if err != nil {
				return err
			}
			if !ok {
				return makeErr(ErrNoCopies, "No copies available.")
			}
		}

		_, err = s.createBorrow(ctx, tx, userID, ref, role)
		return err
	})
	if err != nil {
		return "", err
	}
	return "Item borrowed successfully.", nil
}

func (s *service) Return(ctx context.Context, userID int64, ref model.ItemRef, returnDate *time.Time) (string, error) {
	item, err := s.resolve(ctx, ref)
	if err != nil {
		return "", err
	}

	rd := dateOf(s.now())
	if returnDate != nil {
		rd = dateOf(*returnDate)
	}

	err = s.runTx(ctx, func(tx *sql.Tx) error {
		b, err := s.br.FindOpenForUpdate(ctx, tx, userID, ref)
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNoOpenBorrow, "Borrowing record not found.")
		}
		if err != nil {
			return err
		}

		fine := fineFor(ref.Kind, b.DueDate, rd)
		if err := s.br.Close(ctx, tx, b.ID, rd, fine); err != nil {
			return err
		}

		if ref.Kind == model.KindPrintedBook {
			// Lock the item row so the stock update and any concurrent
			// return on the same title serialize.
			if _, err := s.cat.LockPrintedBook(ctx, tx, ref.ID); err != nil {
				return err
			}
			if err := s.cat.IncrementCopies(ctx, tx, ref.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	if ref.Kind == model.KindPrintedBook {
		// Best-effort: failures are logged and never unwind the
		// committed return.
		s.notifyNextReservation(ctx, ref.ID, item.Title)
	}
	return "Item returned successfully.", nil
}

// notifyNextReservation serves the head of the reservation queue for a
// book that just got a copy back. One reservation per return event; a
// failed delivery leaves the row un-notified so the next return retries.
func (s *service) notifyNextReservation(ctx context.Context, bookID int64, title string) {
	copies, err := s.cat.CopiesAvailable(ctx, bookID)
	if err != nil {
		s.log.Error("reservation check failed", "book_id", bookID, "err", err)
		return
	}
	if copies <= 0 {
		return
	}

	err = s.runTx(ctx, func(tx *sql.Tx) error {
		cand, err := s.rr.OldestUnnotifiedForUpdate(ctx, tx, bookID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}

		req := mailerrepo.SendReq{
			To:      cand.Email,
			Subject: fmt.Sprintf("Book Available: %s", title),
			Body: fmt.Sprintf(
				"Dear %s,\n\nThe book '%s' is now available for borrowing at Nexus Library. "+
					"Please visit the library to borrow it within 3 days, or your reservation will be canceled.\n\n"+
					"Best regards,\nNexus Library Team",
				cand.Username, title),
		}
		if err := s.mail.Send(ctx, req); err != nil {
			s.log.Error("failed to send reservation email", "email", cand.Email, "err", err)
			return nil
		}
		return s.rr.MarkNotified(ctx, tx, cand.ID)
	})
	if err != nil {
		s.log.Error("reservation notification failed", "book_id", bookID, "err", err)
	}
}

func (s *service) Reserve(ctx context.Context, userID, bookID int64) (string, error) {
	if userID <= 0 {
		return "", makeErr(ErrNotEligible, "User must be authenticated to reserve a book.")
	}
	item, err := s.resolve(ctx, model.ItemRef{Kind: model.KindPrintedBook, ID: bookID})
	if err != nil {
		return "", err
	}
	// Reservations exist solely for fully checked-out titles.
	if item.CopiesAvailable > 0 {
		return "", makeErr(ErrCopiesAvailable, "Cannot reserve: Copies are available for borrowing.")
	}

	active, err := s.rr.HasActive(ctx, userID, bookID)
	if err != nil {
		return "", err
	}
	if active {
		return "", makeErr(ErrAlreadyReserved, "You already have an active reservation for this book.")
	}

	if err := s.rr.Insert(ctx, userID, bookID); err != nil {
		if errors.Is(err, reservationrepo.ErrDuplicate) {
			return "", makeErr(ErrAlreadyReserved, "You already have an active reservation for this book.")
		}
		return "", err
	}
	return "Book reserved successfully. You will be notified when a copy is available.", nil
}

func (s *service) RequestPaperAccess(ctx context.Context, userID, paperID int64) (string, error) {
	role, err := s.pr.RoleOf(ctx, userID)
	if err != nil {
		return "", err
	}
	if !role.CanAccessPapers() {
		return "", makeErr(ErrPaperAccess, fmt.Sprintf("As a %s, you cannot access research papers.", role))
	}
	paper, err := s.resolve(ctx, model.ItemRef{Kind: model.KindResearchPaper, ID: paperID})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Access request for '%s' has been submitted.", paper.Title), nil
}

func (s *service) MyHistory(ctx context.Context, userID int64) ([]borrowrepo.HistoryRow, error) {
	return s.br.ListMyBorrowings(ctx, userID)
}

func (s *service) RoleOf(ctx context.Context, userID int64) (model.Role, error) {
	return s.pr.RoleOf(ctx, userID)
}
