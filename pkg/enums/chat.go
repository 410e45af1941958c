package enums

import "fmt"

// ChatSender identifies who authored a support chat message.
type ChatSender string

const (
	ChatSenderUser      ChatSender = "user"
	ChatSenderAssistant ChatSender = "assistant"
	ChatSenderAdmin     ChatSender = "admin"
)

var validChatSenders = []ChatSender{
	ChatSenderUser,
	ChatSenderAssistant,
	ChatSenderAdmin,
}

func (c ChatSender) String() string {
	return string(c)
}

func (c ChatSender) IsValid() bool {
	for _, candidate := range validChatSenders {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChatSender converts raw input into a ChatSender.
func ParseChatSender(value string) (ChatSender, error) {
	for _, candidate := range validChatSenders {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid chat sender %q", value)
}

// ChatLanguage is the client-declared language of a support conversation.
type ChatLanguage string

const (
	ChatLanguageGerman   ChatLanguage = "de"
	ChatLanguageEnglish  ChatLanguage = "en"
	ChatLanguageTurkish  ChatLanguage = "tr"
	ChatLanguageRomanian ChatLanguage = "ro"
	ChatLanguageRussian  ChatLanguage = "ru"
)

var validChatLanguages = []ChatLanguage{
	ChatLanguageGerman,
	ChatLanguageEnglish,
	ChatLanguageTurkish,
	ChatLanguageRomanian,
	ChatLanguageRussian,
}

func (c ChatLanguage) String() string {
	return string(c)
}

func (c ChatLanguage) IsValid() bool {
	for _, candidate := range validChatLanguages {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseChatLanguage converts raw input into a ChatLanguage, defaulting
// to German for empty input.
func ParseChatLanguage(value string) (ChatLanguage, error) {
	if value == "" {
		return ChatLanguageGerman, nil
	}
	for _, candidate := range validChatLanguages {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid chat language %q", value)
}
