package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_constants(t *testing.T) {
	assert.Equal(t, 1, Ace)
	assert.Equal(t, 11, Jack)
	assert.Equal(t, 12, Queen)
	assert.Equal(t, 13, King)
	assert.Equal(t, 4, len(Suits()))
}

func TestCard_String(t *testing.T) {
	assert.Equal(t, "2♡", Card{Value: 2, Suit: Hearts}.String())
	assert.Equal(t, "J♣", Card{Value: 11, Suit: Clubs}.String())
	assert.Equal(t, "Q♢", Card{Value: 12, Suit: Diamonds}.String())
	assert.Equal(t, "K♠", Card{Value: 13, Suit: Spades}.String())
	assert.Equal(t, "A♠", Card{Value: 1, Suit: Spades}.String())
	assert.Equal(t, "10?", Card{Value: 10, Suit: "stars"}.String())
}

func TestCard_Validate(t *testing.T) {
	for _, suit := range Suits() {
		for value := MinValue; value <= MaxValue; value++ {
			assert.NoError(t, Card{Value: value, Suit: suit}.Validate())
		}
	}

	assert.EqualError(t, Card{Value: 0, Suit: Hearts}.Validate(), "card value must be between 1 and 13, got 0")
	assert.EqualError(t, Card{Value: 14, Suit: Hearts}.Validate(), "card value must be between 1 and 13, got 14")
	assert.EqualError(t, Card{Value: -3, Suit: Hearts}.Validate(), "card value must be between 1 and 13, got -3")
	assert.EqualError(t, Card{Value: 5, Suit: "Hearts"}.Validate(), `unknown suit: "Hearts"`)
	assert.EqualError(t, Card{Value: 5}.Validate(), `unknown suit: ""`)

	var ce CardError
	assert.ErrorAs(t, Card{Value: 14, Suit: Spades}.Validate(), &ce)
}

func TestCardFromString(t *testing.T) {
	card, err := CardFromString("10s")
	assert.NoError(t, err)
	assert.Equal(t, Card{Value: 10, Suit: Spades}, card)

	card, err = CardFromString("1H")
	assert.NoError(t, err)
	assert.Equal(t, Card{Value: 1, Suit: Hearts}, card)

	card, err = CardFromString("13d")
	assert.NoError(t, err)
	assert.Equal(t, Card{Value: 13, Suit: Diamonds}, card)

	for _, bad := range []string{"", "0c", "14c", "10x", "s10", "10s "} {
		_, err := CardFromString(bad)
		assert.Error(t, err, bad)
	}
}

func TestCardToString(t *testing.T) {
	assert.Equal(t, "10s", CardToString(Card{Value: 10, Suit: Spades}))
	assert.Equal(t, "2c", CardToString(Card{Value: 2, Suit: Clubs}))

	card, err := CardFromString(CardToString(Card{Value: 7, Suit: Diamonds}))
	assert.NoError(t, err)
	assert.Equal(t, Card{Value: 7, Suit: Diamonds}, card)
}
