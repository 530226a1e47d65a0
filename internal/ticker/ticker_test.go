package ticker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFirstTickerCashtag(t *testing.T) {
	texts := []string{
		"everyone is talking about $social today",
		"also $OTHER is pumping",
	}
	assert.Equal(t, "SOCIAL", FirstTicker(texts))
}

func TestFirstTickerPrefersCashtagWithinPost(t *testing.T) {
	texts := []string{"PEPE is pumping but $wif is the real play"}
	assert.Equal(t, "WIF", FirstTicker(texts))
}

func TestFirstTickerHigherRankedPostWins(t *testing.T) {
	// A bare caps match in a higher-ranked post beats a cashtag further down.
	texts := []string{
		"PEPE looks strong",
		"but $wif is the real play",
	}
	assert.Equal(t, "PEPE", FirstTicker(texts))
}

func TestFirstTickerCashtagInLowerPostWhenNothingAbove(t *testing.T) {
	texts := []string{
		"just vibes today, no symbols here",
		"the $social coin is taking off",
	}
	assert.Equal(t, "SOCIAL", FirstTicker(texts))
}

func TestFirstTickerBareCapsFallback(t *testing.T) {
	texts := []string{"the PEPE chart is wild"}
	assert.Equal(t, "PEPE", FirstTicker(texts))
}

func TestFirstTickerSkipsStopwords(t *testing.T) {
	texts := []string{"GM everyone, WAGMI, buy DEGEN now"}
	assert.Equal(t, "DEGEN", FirstTicker(texts))
}

func TestFirstTickerNothingMatches(t *testing.T) {
	assert.Equal(t, "", FirstTicker([]string{"just a quiet post about gardening"}))
	assert.Equal(t, "", FirstTicker(nil))
}

func TestFirstTickerRespectsRankOrder(t *testing.T) {
	texts := []string{"$FIRST to the moon", "$SECOND is better"}
	assert.Equal(t, "FIRST", FirstTicker(texts))
}
