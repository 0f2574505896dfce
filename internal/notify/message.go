package notify

import (
	"fmt"
	"html"

	"github.com/beluccky/candidate-bot/internal/model"
)

// ReminderMessage renders the fixed reminder template for one candidate.
// Telegram parses it as HTML, so sheet-supplied values are escaped.
func ReminderMessage(c model.Candidate) string {
	return fmt.Sprintf(
		"⚠️ <b>Напоминание о выходе кандидата</b>\n\n"+
			"<b>Кандидат:</b> %s\n"+
			"<b>Объект:</b> %s\n\n"+
			"🔔 Кандидат выходит на работу <b>ЗАВТРА</b>!\n"+
			"Пожалуйста, позвоните и уточните факт выхода.",
		html.EscapeString(c.Name),
		html.EscapeString(c.Object),
	)
}
