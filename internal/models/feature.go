package models

import "fmt"

// FeatureIcon is the closed set of illustrations a landing-page feature can use
type FeatureIcon int

const (
	IconGift FeatureIcon = iota
	IconBot
	IconCommunity
)

func (i FeatureIcon) String() string {
	switch i {
	case IconGift:
		return "gift"
	case IconBot:
		return "bot"
	case IconCommunity:
		return "community"
	}
	return fmt.Sprintf("FeatureIcon(%d)", int(i))
}

// Feature is a selling point shown on the landing page
type Feature struct {
	Title       string
	Description string
	Icon        FeatureIcon
}

// Features is the fixed list shown on the landing page
var Features = []Feature{
	{
		Title:       "Access for All",
		Description: "We prioritize accessibility and inclusivity, ensuring that coding education is available to everyone, regardless of background.",
		Icon:        IconGift,
	},
	{
		Title:       "AI Mentorship",
		Description: "Our AI-powered tutor provides a safe, judgment-free space to ask questions and debug code at your own pace.",
		Icon:        IconBot,
	},
	{
		Title:       "Inclusive Community",
		Description: "Join a global network of learners supporting the goal of gender equality in science and technology.",
		Icon:        IconCommunity,
	},
}
