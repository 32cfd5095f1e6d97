package deck

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Suit represents a card suit
type Suit string

// suit constants
const (
	Hearts   Suit = "hearts"
	Clubs    Suit = "clubs"
	Diamonds Suit = "diamonds"
	Spades   Suit = "spades"
)

// Suits returns the four playable suits
func Suits() []Suit {
	return []Suit{Hearts, Diamonds, Clubs, Spades}
}

// Valid returns true if the suit is one of the four known suits
func (s Suit) Valid() bool {
	switch s {
	case Hearts, Diamonds, Clubs, Spades:
		return true
	}

	return false
}

// card value bounds
const (
	MinValue = 1
	MaxValue = 13
)

// face cards
const (
	Ace   = 1
	Jack  = 11
	Queen = 12
	King  = 13
)

// CardError is returned when a card is malformed
type CardError string

func (c CardError) Error() string {
	return string(c)
}

// Card is an individual playing card
// The suit is recorded, but only the value decides a trick
type Card struct {
	Value int  `json:"value"`
	Suit  Suit `json:"suit"`
}

// Validate returns nil if the card has a value of 1-13 and a known suit
func (c Card) Validate() error {
	if c.Value < MinValue || c.Value > MaxValue {
		return CardError(fmt.Sprintf("card value must be between %d and %d, got %d", MinValue, MaxValue, c.Value))
	}

	if !c.Suit.Valid() {
		return CardError(fmt.Sprintf("unknown suit: %q", string(c.Suit)))
	}

	return nil
}

func (c Card) String() string {
	var value string
	switch c.Value {
	case Ace:
		value = "A"
	case Jack:
		value = "J"
	case Queen:
		value = "Q"
	case King:
		value = "K"
	default:
		value = strconv.Itoa(c.Value)
	}

	var suit string
	switch c.Suit {
	case Clubs:
		suit = "♣"
	case Diamonds:
		suit = "♢"
	case Hearts:
		suit = "♡"
	case Spades:
		suit = "♠"
	default:
		suit = "?"
	}

	return fmt.Sprintf("%s%s", value, suit)
}

var cardRx = regexp.MustCompile(`(?i)^(1[0-3]|[1-9])([cdhs])\z`)

// CardFromString returns a Card from the string.
// The string must be in the format of <value><suit> where value >= 1 and <= 13 and suit in [cdhs]
func CardFromString(s string) (Card, error) {
	match := cardRx.FindStringSubmatch(s)
	if match == nil {
		return Card{}, CardError(fmt.Sprintf("could not parse card: %q", s))
	}

	value, err := strconv.Atoi(match[1])
	if err != nil {
		return Card{}, CardError(fmt.Sprintf("could not parse card %q: %v", s, err))
	}

	var suit Suit
	switch strings.ToLower(match[2]) {
	case "c":
		suit = Clubs
	case "d":
		suit = Diamonds
	case "h":
		suit = Hearts
	case "s":
		suit = Spades
	}

	return Card{Value: value, Suit: suit}, nil
}

// CardToString converts a card (10 of Spades) to a string (10s)
func CardToString(card Card) string {
	var suit string
	switch card.Suit {
	case Clubs:
		suit = "c"
	case Hearts:
		suit = "h"
	case Diamonds:
		suit = "d"
	case Spades:
		suit = "s"
	}

	return fmt.Sprintf("%d%s", card.Value, suit)
}
