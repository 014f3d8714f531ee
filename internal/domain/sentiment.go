package domain

import "strings"

// Sentiment is a coarse mood label derived from ticket text.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

var (
	positiveWords = []string{
		"happy", "great", "good", "glad", "pleased", "positive", "thanks",
		"glücklich", "super", "gut", "freut", "freude", "erfreut", "positiv",
	}
	negativeWords = []string{
		"angry", "bad", "problem", "error", "broken", "frustrat", "negative", "fail",
		"böse", "schlecht", "fehler", "frust", "negativ",
	}
)

// DetectSentiment classifies text by keyword lists. Positive words win over negative ones.
func DetectSentiment(text string) Sentiment {
	lowered := strings.ToLower(text)
	for _, w := range positiveWords {
		if strings.Contains(lowered, w) {
			return SentimentPositive
		}
	}
	for _, w := range negativeWords {
		if strings.Contains(lowered, w) {
			return SentimentNegative
		}
	}
	return SentimentNeutral
}
