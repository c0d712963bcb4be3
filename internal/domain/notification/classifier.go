package notification

import (
	"unicode/utf8"

	"golang.org/x/text/width"
)

// MessageType is the SMS gateway billing class of a text message.
type MessageType string

const (
	MessageSMS MessageType = "SMS"
	MessageLMS MessageType = "LMS"
)

// smsWidthLimit is the gateway's byte budget for a short message, counting
// wide characters (Hangul etc.) as two units.
const smsWidthLimit = 90

// Classify returns SMS when the text fits the short-message budget and LMS otherwise.
func Classify(text string) MessageType {
	if WeightedWidth(text) <= smsWidthLimit {
		return MessageSMS
	}
	return MessageLMS
}

// WeightedWidth counts East Asian wide and fullwidth runes as 2 and every other
// rune as 1. Text that is not valid UTF-8 is measured in raw bytes.
func WeightedWidth(text string) int {
	if !utf8.ValidString(text) {
		return len(text)
	}

	n := 0
	for _, r := range text {
		switch width.LookupRune(r).Kind() {
		case width.EastAsianWide, width.EastAsianFullwidth:
			n += 2
		default:
			n++
		}
	}
	return n
}

// ChannelType maps the message class onto the delivery log channel.
func (t MessageType) ChannelType() ChannelType {
	if t == MessageLMS {
		return ChannelLMS
	}
	return ChannelSMS
}
