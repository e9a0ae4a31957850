package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	fineModel "bookworm_backend/internals/features/lending/fines/model"
	memberModel "bookworm_backend/internals/features/membership/members/model"
)

var (
	ErrMemberNotFound = errors.New("member not found")
	ErrSendFailed     = errors.New("reminder delivery failed")
)

// ReminderService composes and sends debt reminders. Delivery is
// fire-once: a failure goes back to the caller, nothing is retried.
type ReminderService struct {
	DB      *gorm.DB
	Mailer  MailSender
	BaseURL string
}

func NewReminderService(db *gorm.DB, mailer MailSender, baseURL string) *ReminderService {
	return &ReminderService{DB: db, Mailer: mailer, BaseURL: baseURL}
}

// NotifyDebtor mails the member their total unpaid fines. When the member
// owes nothing it reports sent=false and sends nothing.
func (s *ReminderService) NotifyDebtor(ctx context.Context, memberID uuid.UUID) (total float64, sent bool, err error) {
	db := s.DB.WithContext(ctx)

	var member memberModel.MemberModel
	if err := db.First(&member, "member_id = ?", memberID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, false, ErrMemberNotFound
		}
		return 0, false, err
	}

	var totalDebt float64
	if err := db.Model(&fineModel.FineModel{}).
		Where("fine_member_id = ? AND fine_status = ?", memberID, fineModel.FineStatusUnpaid).
		Select("COALESCE(SUM(fine_amount), 0)").
		Scan(&totalDebt).Error; err != nil {
		return 0, false, err
	}

	if totalDebt <= 0 {
		return 0, false, nil
	}

	accountURL := s.BaseURL + "/api/u/fees"
	subject := "Action Required: Outstanding Library Fines"
	textBody := fmt.Sprintf(
		"Dear %s,\n\n"+
			"This is a reminder that you have outstanding fines totaling $%.2f.\n"+
			"Please log in to your account to view details and make a payment: %s\n\n"+
			"Thank you,\nBookworm Library",
		member.MemberFirstName, totalDebt, accountURL,
	)
	htmlBody := debtReminderHTML(member.MemberFirstName, totalDebt, accountURL)

	if err := s.Mailer.Send(member.MemberEmail, subject, textBody, htmlBody); err != nil {
		return totalDebt, false, fmt.Errorf("%w: %v", ErrSendFailed, err)
	}
	return totalDebt, true, nil
}

func debtReminderHTML(firstName string, totalDebt float64, accountURL string) string {
	return fmt.Sprintf(`<html>
<body style="font-family: sans-serif; line-height: 1.6; color: #333; background-color: #f4f4f4; margin: 0; padding: 20px;">
  <div style="max-width: 600px; margin: 0 auto; background-color: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background-color: #2c3e50; padding: 25px; text-align: center;">
      <h1 style="color: #ffffff; margin: 0; font-size: 24px;">Bookworm Library</h1>
    </div>
    <div style="padding: 40px 30px;">
      <h2 style="color: #2c3e50; margin-top: 0; font-size: 20px;">Outstanding Balance Notice</h2>
      <p>Dear %s,</p>
      <p>This is a friendly reminder that your account currently has an outstanding balance for overdue items.</p>
      <div style="background-color: #fff5f5; border-left: 4px solid #e74c3c; padding: 15px; margin: 25px 0;">
        <p style="margin: 0; color: #c0392b;"><strong>Total Amount Due:</strong> <span style="font-size: 1.3em; font-weight: bold;">$%.2f</span></p>
      </div>
      <p>Please log in to your library account to view the specific details of these fines and to process your payment securely.</p>
      <div style="text-align: center; margin-top: 35px;">
        <a href="%s" style="background-color: #3498db; color: white; padding: 14px 30px; text-decoration: none; border-radius: 50px; font-weight: bold;">View My Account</a>
      </div>
    </div>
    <div style="background-color: #f8fafc; padding: 20px; text-align: center; font-size: 13px; color: #64748b;">
      <p style="margin: 5px 0;">&copy; %d Bookworm Library System</p>
      <p style="margin: 5px 0;">This is an automated message. Please do not reply directly to this email.</p>
    </div>
  </div>
</body>
</html>`, firstName, totalDebt, accountURL, time.Now().Year())
}
