package classify

import (
	"testing"

	"chatlake/internal/core/rulepack"
)

func newClassifier(t *testing.T) *Classifier {
	t.Helper()
	p, err := rulepack.Load()
	if err != nil {
		t.Fatalf("rulepack.Load(): %v", err)
	}
	return New(p)
}

func TestEmptyBodyGetsFallbacks(t *testing.T) {
	c := newClassifier(t)
	got := c.Classify("")
	if got.Category != "Other" || got.Urgency != "Normal" || got.Intent != "General" || got.Sentiment != "Neutral" {
		t.Fatalf("fallbacks = %+v", got)
	}
}

func TestEveryBodyGetsAllFourLabels(t *testing.T) {
	c := newClassifier(t)
	bodies := []string{
		"random text with no keywords at all xyzzy",
		"عايز اطلب دلوقتي ضروري",
		"how much is this? thanks, great service",
		"\U0001F600",
	}
	for _, b := range bodies {
		got := c.Classify(b)
		if got.Category == "" || got.Sentiment == "" || got.Urgency == "" || got.Intent == "" {
			t.Fatalf("empty label for %q: %+v", b, got)
		}
	}
}

func TestCategoryFirstMatchWins(t *testing.T) {
	c := newClassifier(t)
	// "order" sits in Order/Purchase, "price" in Price Inquiry;
	// the earlier rule in the table must win
	if got := c.Category("order now, what is the price"); got != "Order/Purchase" {
		t.Fatalf("Category = %q, want Order/Purchase", got)
	}
	// a question mark alone lands on Inquiry/Question before Price Inquiry
	if got := c.Category("? price"); got != "Inquiry/Question" {
		t.Fatalf("Category = %q, want Inquiry/Question", got)
	}
}

func TestCategoryArabicKeywords(t *testing.T) {
	c := newClassifier(t)
	if got := c.Category("كام سعر الدواء"); got != "Price Inquiry" {
		t.Fatalf("Category = %q, want Price Inquiry", got)
	}
	if got := c.Category("عايز حاجة"); got != "Order/Purchase" {
		t.Fatalf("Category = %q, want Order/Purchase", got)
	}
}

func TestCategoryCaseInsensitive(t *testing.T) {
	c := newClassifier(t)
	if got := c.Category("ORDER NOW"); got != "Order/Purchase" {
		t.Fatalf("Category = %q", got)
	}
}

func TestUrgencyLevels(t *testing.T) {
	c := newClassifier(t)
	if got := c.Urgency("this is urgent please"); got != "Urgent" {
		t.Fatalf("Urgency = %q, want Urgent", got)
	}
	if got := c.Urgency("important question"); got != "High" {
		t.Fatalf("Urgency = %q, want High", got)
	}
	if got := c.Urgency("just saying hi"); got != "Normal" {
		t.Fatalf("Urgency = %q, want Normal", got)
	}
}

func TestIntentTable(t *testing.T) {
	c := newClassifier(t)
	if got := c.Intent("i want to buy this"); got != "Buy" {
		t.Fatalf("Intent = %q, want Buy", got)
	}
	if got := c.Intent("متوفر عندكم؟"); got != "Check Availability" {
		t.Fatalf("Intent = %q, want Check Availability", got)
	}
	if got := c.Intent("hello there"); got != "General" {
		t.Fatalf("Intent = %q, want General", got)
	}
}

func TestSentimentCounting(t *testing.T) {
	c := newClassifier(t)
	if got := c.Sentiment("thanks, great and excellent"); got != "Positive" {
		t.Fatalf("Sentiment = %q, want Positive", got)
	}
	if got := c.Sentiment("bad, terrible, worst experience"); got != "Negative" {
		t.Fatalf("Sentiment = %q, want Negative", got)
	}
	// one hit each side is a tie
	if got := c.Sentiment("thanks but bad"); got != "Neutral" {
		t.Fatalf("Sentiment = %q, want Neutral", got)
	}
	if got := c.Sentiment("nothing emotional here"); got != "Neutral" {
		t.Fatalf("Sentiment = %q, want Neutral", got)
	}
	// majority wins over a single opposite hit
	if got := c.Sentiment("bad but thanks, great, excellent"); got != "Positive" {
		t.Fatalf("Sentiment = %q, want Positive", got)
	}
}

func TestSentimentArabic(t *testing.T) {
	c := newClassifier(t)
	if got := c.Sentiment("شكرا ممتاز"); got != "Positive" {
		t.Fatalf("Sentiment = %q, want Positive", got)
	}
	if got := c.Sentiment("في مشكلة والخدمة سيء"); got != "Negative" {
		t.Fatalf("Sentiment = %q, want Negative", got)
	}
}

func TestClassifiersRunIndependently(t *testing.T) {
	c := newClassifier(t)
	// one body can carry labels from several tables at once
	got := c.Classify("عايز اطلب ضروري وبكام السعر شكرا")
	if got.Category != "Order/Purchase" {
		t.Fatalf("Category = %q", got.Category)
	}
	if got.Urgency != "Urgent" {
		t.Fatalf("Urgency = %q", got.Urgency)
	}
	if got.Intent != "Buy" {
		t.Fatalf("Intent = %q", got.Intent)
	}
	if got.Sentiment != "Positive" {
		t.Fatalf("Sentiment = %q", got.Sentiment)
	}
}
