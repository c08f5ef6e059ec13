package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransactionBelongsTo(t *testing.T) {
	tx := Transaction{FromID: "52998224725", ToID: "11144477735"}

	assert.True(t, tx.BelongsTo("52998224725"))
	assert.True(t, tx.BelongsTo("11144477735"))
	assert.False(t, tx.BelongsTo("12345678909"))
}

func TestTransactionIsSideOf(t *testing.T) {
	sent := Transaction{Amount: -100, FromID: "52998224725", ToID: "11144477735"}
	received := Transaction{Amount: 100, FromID: "52998224725", ToID: "11144477735"}

	assert.True(t, sent.IsSideOf("52998224725"))
	assert.False(t, sent.IsSideOf("11144477735"))
	assert.True(t, received.IsSideOf("11144477735"))
	assert.False(t, received.IsSideOf("52998224725"))
}

func TestChannelKinds(t *testing.T) {
	sent, received := ChannelPix.Kinds()
	assert.Equal(t, KindPixSent, sent)
	assert.Equal(t, KindPixReceived, received)

	sent, received = ChannelTED.Kinds()
	assert.Equal(t, KindTEDSent, sent)
	assert.Equal(t, KindTEDReceived, received)

	assert.False(t, Channel("doc").IsValid())
	assert.Equal(t, ChannelTED, (&Transaction{Kind: KindTEDReceived}).Channel())
}
