package browser

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/shhac/impulse/internal/domain"
)

var redisIcon = theme.NewThemedResource(
	fyne.NewStaticResource("redis.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24"><path fill="#000000" d="M12 2 2 6.5 12 11l10-4.5L12 2zm0 11.2L4.3 9.7 2 10.7l10 4.5 10-4.5-2.3-1L12 13.2zm0 4.3-7.7-3.5-2.3 1L12 19.5l10-4.5-2.3-1-7.7 3.5z"/></svg>`)),
)

var jqIcon = theme.NewThemedResource(
	fyne.NewStaticResource("jq.svg", []byte(`<svg xmlns="http://www.w3.org/2000/svg" width="24" height="24" viewBox="0 0 24 24"><path fill="#000000" d="M9 3C6.8 3 6 4.3 6 6v3c0 1.1-.9 2-2 2v2c1.1 0 2 .9 2 2v3c0 1.7.8 3 3 3h1v-2H9c-.8 0-1-.4-1-1v-3.4c0-1.1-.5-2-1.4-2.6.9-.6 1.4-1.5 1.4-2.6V6c0-.6.2-1 1-1h1V3H9zm6 0h-1v2h1c.8 0 1 .4 1 1v3.4c0 1.1.5 2 1.4 2.6-.9.6-1.4 1.5-1.4 2.6V18c0 .6-.2 1-1 1h-1v2h1c2.2 0 3-1.3 3-3v-3c0-1.1.9-2 2-2v-2c-1.1 0-2-.9-2-2V6c0-1.7-.8-3-3-3z"/></svg>`)),
)

// kindIcon returns the icon shown next to a request of kind.
func kindIcon(kind domain.Kind) fyne.Resource {
	switch kind {
	case domain.KindHTTP:
		return theme.MailSendIcon()
	case domain.KindSQL:
		return theme.StorageIcon()
	case domain.KindGRPC:
		return theme.ComputerIcon()
	case domain.KindJQ:
		return jqIcon
	case domain.KindRedis:
		return redisIcon
	case domain.KindMarkdown:
		return theme.DocumentIcon()
	default:
		return theme.FileIcon()
	}
}
