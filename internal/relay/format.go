package relay

import (
	"strconv"

	"relaybot/internal/store"
	"relaybot/pkg/tghtml"
)

const timeLayout = "2006-01-02 15:04:05"

// FormatRecord renders one pending row as a Telegram HTML block with bold
// labels. Pure and deterministic.
//
// All field values (the message body included) are HTML-escaped before
// interpolation. The system this replaces passed bodies through verbatim,
// which let markup-special characters corrupt the output.
func FormatRecord(r store.Record) string {
	if !r.Complete {
		return string(tghtml.B("\U0001F4E8 Record:") + " " + tghtml.Esc(r.String()))
	}
	return string(tghtml.JoinH("\n",
		tghtml.B("\U0001F4E8 New Message"),
		tghtml.Line("ID:", strconv.FormatInt(r.ID, 10)),
		tghtml.Line("To:", r.Recipient),
		tghtml.Line("Message:", r.Text),
		tghtml.Line("Time:", r.CreatedAt.Format(timeLayout)),
	))
}
