package enums

import (
	"errors"
	"strings"
)

type ReportReason string

const (
	ReportReasonSpam         ReportReason = "spam"
	ReportReasonViolence     ReportReason = "violence"
	ReportReasonPornography  ReportReason = "pornography"
	ReportReasonChildAbuse   ReportReason = "child-abuse"
	ReportReasonCopyright    ReportReason = "copyright"
	ReportReasonFakeNews     ReportReason = "fake-news"
	ReportReasonIllegalDrugs ReportReason = "illegal-drugs"
	ReportReasonOther        ReportReason = "other"
)

var ErrUnknownReason = errors.New("unknown report reason")

// ReasonTokens lists the command tokens operators type, in display order.
var ReasonTokens = []string{"spam", "violence", "porn", "child", "copyright", "fake", "drugs", "other"}

var reasonByToken = map[string]ReportReason{
	"spam":          ReportReasonSpam,
	"violence":      ReportReasonViolence,
	"porn":          ReportReasonPornography,
	"pornography":   ReportReasonPornography,
	"child":         ReportReasonChildAbuse,
	"child-abuse":   ReportReasonChildAbuse,
	"copyright":     ReportReasonCopyright,
	"fake":          ReportReasonFakeNews,
	"fake-news":     ReportReasonFakeNews,
	"drugs":         ReportReasonIllegalDrugs,
	"illegal-drugs": ReportReasonIllegalDrugs,
	"other":         ReportReasonOther,
}

var reasonLabels = map[ReportReason]string{
	ReportReasonSpam:         "🚫 Spam",
	ReportReasonViolence:     "🔴 Violence",
	ReportReasonPornography:  "🔞 Pornography",
	ReportReasonChildAbuse:   "🚨 Child Abuse",
	ReportReasonCopyright:    "🏴‍☠️ Copyright",
	ReportReasonFakeNews:     "📰 Fake News",
	ReportReasonIllegalDrugs: "💊 Drugs",
	ReportReasonOther:        "⚙️ Other",
}

func ParseReportReason(token string) (ReportReason, error) {
	reason, ok := reasonByToken[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return "", ErrUnknownReason
	}
	return reason, nil
}

func (r ReportReason) Valid() bool {
	_, ok := reasonLabels[r]
	return ok
}

func (r ReportReason) Label() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return string(r)
}
