package notification

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		text string
		want MessageType
	}{
		{"ascii", "hello", MessageSMS},
		{"empty", "", MessageSMS},
		{"90 ascii", strings.Repeat("a", 90), MessageSMS},
		{"91 ascii", strings.Repeat("a", 91), MessageLMS},
		{"45 hangul", strings.Repeat("가", 45), MessageSMS},
		{"46 hangul", strings.Repeat("가", 46), MessageLMS},
		{"mixed at limit", strings.Repeat("가", 44) + "ab", MessageSMS},
		{"mixed over limit", strings.Repeat("가", 44) + "abc", MessageLMS},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.text))
		})
	}
}

func TestWeightedWidth(t *testing.T) {
	assert.Equal(t, 5, WeightedWidth("hello"))
	assert.Equal(t, 4, WeightedWidth("주문"))
	assert.Equal(t, 9, WeightedWidth("[쇼핑]abc"))

	// Invalid UTF-8 falls back to byte length.
	assert.Equal(t, 3, WeightedWidth("\xff\xfe\xfd"))
}

func TestMessageType_ChannelType(t *testing.T) {
	assert.Equal(t, ChannelSMS, MessageSMS.ChannelType())
	assert.Equal(t, ChannelLMS, MessageLMS.ChannelType())
}
