package libs

import (
	"fmt"

	"gopkg.in/gomail.v2"

	"pcb-shop/utils"
)

type Mailer struct {
	dialer *gomail.Dialer
	from   string
}

func NewMailer(host string, port int, user, pass, from string) (*Mailer, error) {
	if host == "" || user == "" || pass == "" {
		return nil, fmt.Errorf("SMTP configuration missing")
	}
	if from == "" {
		from = user
	}
	return &Mailer{dialer: gomail.NewDialer(host, port, user, pass), from: from}, nil
}

func (m *Mailer) SendOrderConfirmation(toEmail, orderNumber string, total int64) error {
	msg := m.orderConfirmation(toEmail, orderNumber, total)
	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (m *Mailer) orderConfirmation(toEmail, orderNumber string, total int64) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", toEmail)
	msg.SetHeader("Subject", fmt.Sprintf("Order Confirmation #%s - PCB Shop", orderNumber))

	body := fmt.Sprintf(`
<!DOCTYPE html>
<html>
<head>
    <style>
        body { font-family: Arial, sans-serif; background-color: #f4f4f4; padding: 20px; }
        .container { max-width: 600px; margin: 0 auto; background-color: white; padding: 30px; border-radius: 10px; }
        .total { font-size: 24px; font-weight: bold; color: #0f766e; }
        .footer { text-align: center; margin-top: 30px; color: #666; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <h2>Thank you for your order</h2>
        <p>Your order <strong>#%s</strong> has been placed.</p>
        <p class="total">Total: %s</p>
        <div class="footer">PCB Shop</div>
    </div>
</body>
</html>
	`, orderNumber, utils.FormatVND(total))

	msg.SetBody("text/html", body)
	return msg
}
