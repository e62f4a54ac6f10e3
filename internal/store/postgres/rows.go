// internal/store/postgres/rows.go
package postgres

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Sudhirkumar6009/LibraXpert-sub000/internal/model"
)

type bookRow struct {
	ID              uuid.UUID      `db:"id"`
	Title           string         `db:"title"`
	Author          string         `db:"author"`
	ISBN            *string        `db:"isbn"`
	Categories      pq.StringArray `db:"categories"`
	Description     string         `db:"description"`
	TotalCopies     int            `db:"total_copies"`
	AvailableCopies int            `db:"available_copies"`
	Status          string         `db:"status"`
	Rating          float64        `db:"rating"`
	CoverImage      string         `db:"cover_image"`
	PDFFile         string         `db:"pdf_file"`
	Tags            pq.StringArray `db:"tags"`
	AddedBy         *uuid.UUID     `db:"added_by"`
	CreatedAt       time.Time      `db:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"`
}

func toBookRow(b *model.Book) *bookRow {
	row := &bookRow{
		ID:              b.ID,
		Title:           b.Title,
		Author:          b.Author,
		Categories:      nonNil(b.Categories),
		Description:     b.Description,
		TotalCopies:     b.TotalCopies,
		AvailableCopies: b.AvailableCopies,
		Status:          string(b.Status),
		Rating:          b.Rating,
		CoverImage:      b.CoverImage,
		PDFFile:         b.PDFFile,
		Tags:            nonNil(b.Tags),
		CreatedAt:       b.CreatedAt,
		UpdatedAt:       b.UpdatedAt,
	}
	if b.ISBN != "" {
		isbn := b.ISBN
		row.ISBN = &isbn
	}
	if b.AddedBy != uuid.Nil {
		addedBy := b.AddedBy
		row.AddedBy = &addedBy
	}
	return row
}

func fromBookRow(r *bookRow) *model.Book {
	b := &model.Book{
		ID:              r.ID,
		Title:           r.Title,
		Author:          r.Author,
		Categories:      []string(r.Categories),
		Description:     r.Description,
		TotalCopies:     r.TotalCopies,
		AvailableCopies: r.AvailableCopies,
		Status:          model.BookStatus(r.Status),
		Rating:          r.Rating,
		CoverImage:      r.CoverImage,
		PDFFile:         r.PDFFile,
		Tags:            []string(r.Tags),
		CreatedAt:       r.CreatedAt.UTC(),
		UpdatedAt:       r.UpdatedAt.UTC(),
	}
	if r.ISBN != nil {
		b.ISBN = *r.ISBN
	}
	if r.AddedBy != nil {
		b.AddedBy = *r.AddedBy
	}
	return b
}

type userRow struct {
	ID           uuid.UUID `db:"id"`
	Name         string    `db:"name"`
	Email        string    `db:"email"`
	Role         string    `db:"role"`
	PasswordHash string    `db:"password_hash"`
	PasswordSalt string    `db:"password_salt"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

func toUserRow(u *model.User) *userRow {
	return &userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		Role:         string(u.Role),
		PasswordHash: u.PasswordHash,
		PasswordSalt: u.PasswordSalt,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func fromUserRow(r *userRow) *model.User {
	return &model.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		Role:         model.Role(r.Role),
		PasswordHash: r.PasswordHash,
		PasswordSalt: r.PasswordSalt,
		CreatedAt:    r.CreatedAt.UTC(),
		UpdatedAt:    r.UpdatedAt.UTC(),
	}
}

type borrowRequestRow struct {
	ID                 uuid.UUID  `db:"id"`
	BookID             uuid.UUID  `db:"book_id"`
	UserID             uuid.UUID  `db:"user_id"`
	Status             string     `db:"status"`
	RequestedAt        time.Time  `db:"requested_at"`
	ProcessedBy        *uuid.UUID `db:"processed_by"`
	ProcessedAt        *time.Time `db:"processed_at"`
	Message            string     `db:"message"`
	DueDate            *time.Time `db:"due_date"`
	Returned           bool       `db:"returned"`
	ReturnedAt         *time.Time `db:"returned_at"`
	ApprovedAt         *time.Time `db:"approved_at"`
	RenewalStatus      string     `db:"renewal_status"`
	RenewalRequestedAt *time.Time `db:"renewal_requested_at"`
	RenewalDecisionAt  *time.Time `db:"renewal_decision_at"`
	RenewalDecisionBy  *uuid.UUID `db:"renewal_decision_by"`
	RenewalNotes       string     `db:"renewal_notes"`
	RenewalCount       int        `db:"renewal_count"`
	LastRenewedAt      *time.Time `db:"last_renewed_at"`
}

func toBorrowRequestRow(r *model.BorrowRequest) *borrowRequestRow {
	renewal := r.RenewalStatus
	if renewal == "" {
		renewal = model.RenewalNone
	}
	return &borrowRequestRow{
		ID:                 r.ID,
		BookID:             r.BookID,
		UserID:             r.UserID,
		Status:             string(r.Status),
		RequestedAt:        r.RequestedAt,
		ProcessedBy:        r.ProcessedBy,
		ProcessedAt:        r.ProcessedAt,
		Message:            r.Message,
		DueDate:            r.DueDate,
		Returned:           r.Returned,
		ReturnedAt:         r.ReturnedAt,
		ApprovedAt:         r.ApprovedAt,
		RenewalStatus:      string(renewal),
		RenewalRequestedAt: r.RenewalRequestedAt,
		RenewalDecisionAt:  r.RenewalDecisionAt,
		RenewalDecisionBy:  r.RenewalDecisionBy,
		RenewalNotes:       r.RenewalNotes,
		RenewalCount:       r.RenewalCount,
		LastRenewedAt:      r.LastRenewedAt,
	}
}

func fromBorrowRequestRow(r *borrowRequestRow) *model.BorrowRequest {
	return &model.BorrowRequest{
		ID:                 r.ID,
		BookID:             r.BookID,
		UserID:             r.UserID,
		Status:             model.RequestStatus(r.Status),
		RequestedAt:        r.RequestedAt.UTC(),
		ProcessedBy:        r.ProcessedBy,
		ProcessedAt:        utc(r.ProcessedAt),
		Message:            r.Message,
		DueDate:            utc(r.DueDate),
		Returned:           r.Returned,
		ReturnedAt:         utc(r.ReturnedAt),
		ApprovedAt:         utc(r.ApprovedAt),
		RenewalStatus:      model.RenewalStatus(r.RenewalStatus),
		RenewalRequestedAt: utc(r.RenewalRequestedAt),
		RenewalDecisionAt:  utc(r.RenewalDecisionAt),
		RenewalDecisionBy:  r.RenewalDecisionBy,
		RenewalNotes:       r.RenewalNotes,
		RenewalCount:       r.RenewalCount,
		LastRenewedAt:      utc(r.LastRenewedAt),
	}
}

type reservationRow struct {
	ID             uuid.UUID  `db:"id"`
	BookID         uuid.UUID  `db:"book_id"`
	UserID         uuid.UUID  `db:"user_id"`
	Status         string     `db:"status"`
	RequestedAt    time.Time  `db:"requested_at"`
	ExpiryDate     time.Time  `db:"expiry_date"`
	NotifiedUser   bool       `db:"notified_user"`
	FulfilledAt    *time.Time `db:"fulfilled_at"`
	PickupDeadline *time.Time `db:"pickup_deadline"`
	CancelledAt    *time.Time `db:"cancelled_at"`
	CancelReason   string     `db:"cancel_reason"`
	Notes          string     `db:"notes"`
}

func toReservationRow(r *model.Reservation) *reservationRow {
	return &reservationRow{
		ID:             r.ID,
		BookID:         r.BookID,
		UserID:         r.UserID,
		Status:         string(r.Status),
		RequestedAt:    r.RequestedAt,
		ExpiryDate:     r.ExpiryDate,
		NotifiedUser:   r.NotifiedUser,
		FulfilledAt:    r.FulfilledAt,
		PickupDeadline: r.PickupDeadline,
		CancelledAt:    r.CancelledAt,
		CancelReason:   r.CancelReason,
		Notes:          r.Notes,
	}
}

func fromReservationRow(r *reservationRow) *model.Reservation {
	return &model.Reservation{
		ID:             r.ID,
		BookID:         r.BookID,
		UserID:         r.UserID,
		Status:         model.ReservationStatus(r.Status),
		RequestedAt:    r.RequestedAt.UTC(),
		ExpiryDate:     r.ExpiryDate.UTC(),
		NotifiedUser:   r.NotifiedUser,
		FulfilledAt:    utc(r.FulfilledAt),
		PickupDeadline: utc(r.PickupDeadline),
		CancelledAt:    utc(r.CancelledAt),
		CancelReason:   r.CancelReason,
		Notes:          r.Notes,
	}
}

type notificationRow struct {
	ID          uuid.UUID `db:"id"`
	UserID      uuid.UUID `db:"user_id"`
	Title       string    `db:"title"`
	Message     string    `db:"message"`
	Type        string    `db:"type"`
	RelatedKind string    `db:"related_kind"`
	RelatedID   uuid.UUID `db:"related_id"`
	ActionLink  string    `db:"action_link"`
	IsRead      bool      `db:"is_read"`
	CreatedAt   time.Time `db:"created_at"`
}

func toNotificationRow(n *model.Notification) *notificationRow {
	return &notificationRow{
		ID:          n.ID,
		UserID:      n.UserID,
		Title:       n.Title,
		Message:     n.Message,
		Type:        string(n.Type),
		RelatedKind: string(n.Related.Kind),
		RelatedID:   n.Related.ID,
		ActionLink:  n.ActionLink,
		IsRead:      n.IsRead,
		CreatedAt:   n.CreatedAt,
	}
}

func fromNotificationRow(r *notificationRow) *model.Notification {
	return &model.Notification{
		ID:         r.ID,
		UserID:     r.UserID,
		Title:      r.Title,
		Message:    r.Message,
		Type:       model.NotificationType(r.Type),
		Related:    model.Related{Kind: model.RelatedKind(r.RelatedKind), ID: r.RelatedID},
		ActionLink: r.ActionLink,
		IsRead:     r.IsRead,
		CreatedAt:  r.CreatedAt.UTC(),
	}
}

type feedbackRow struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Subject   string    `db:"subject"`
	Message   string    `db:"message"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
}

func toFeedbackRow(f *model.Feedback) *feedbackRow {
	return &feedbackRow{
		ID:        f.ID,
		UserID:    f.UserID,
		Subject:   f.Subject,
		Message:   f.Message,
		Rating:    f.Rating,
		CreatedAt: f.CreatedAt,
	}
}

func fromFeedbackRow(r *feedbackRow) *model.Feedback {
	return &model.Feedback{
		ID:        r.ID,
		UserID:    r.UserID,
		Subject:   r.Subject,
		Message:   r.Message,
		Rating:    r.Rating,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func nonNil(s []string) pq.StringArray {
	if s == nil {
		return pq.StringArray{}
	}
	return pq.StringArray(s)
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
