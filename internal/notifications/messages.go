package notifications

import (
	"fmt"
	"strings"

	"github.com/angelmondragon/rocketshoes/pkg/enums"
)

const (
	LanguageEnglish    = "en"
	LanguagePortuguese = "pt-BR"
)

// Messages maps each notification kind to the text shown to the shopper.
type Messages map[enums.NotificationKind]string

var english = Messages{
	enums.NotificationKindStockExceeded: "Requested quantity is out of stock",
	enums.NotificationKindAddFailed:     "Failed to add product",
	enums.NotificationKindRemoveFailed:  "Failed to remove product",
	enums.NotificationKindUpdateFailed:  "Failed to update product quantity",
}

var portuguese = Messages{
	enums.NotificationKindStockExceeded: "Quantidade solicitada fora de estoque",
	enums.NotificationKindAddFailed:     "Erro na adição do produto",
	enums.NotificationKindRemoveFailed:  "Erro na remoção do produto",
	enums.NotificationKindUpdateFailed:  "Erro na alteração de quantidade do produto",
}

// MessagesFor returns the catalog for a language tag. Matching ignores case and
// accepts "_" in place of "-".
func MessagesFor(language string) (Messages, error) {
	tag := strings.ReplaceAll(strings.TrimSpace(language), "_", "-")
	switch {
	case tag == "", strings.EqualFold(tag, LanguageEnglish):
		return english, nil
	case strings.EqualFold(tag, LanguagePortuguese), strings.EqualFold(tag, "pt"):
		return portuguese, nil
	}
	return nil, fmt.Errorf("unsupported notification language %q", language)
}

// Text returns the message for kind, falling back to the kind itself.
func (m Messages) Text(kind enums.NotificationKind) string {
	if text, ok := m[kind]; ok {
		return text
	}
	return kind.String()
}
