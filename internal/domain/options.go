package domain

// FocusAreaOptions are the focus areas offered by the settings form.
var FocusAreaOptions = []Option{
	{Value: "technical_details", Label: "Technical Details"},
	{Value: "key_points", Label: "Key Points"},
	{Value: "action_items", Label: "Action Items"},
}

// LengthOptions are the summary lengths offered by the settings form.
var LengthOptions = []Option{
	{Value: string(LengthShort), Label: "Short"},
	{Value: string(LengthMedium), Label: "Medium"},
	{Value: string(LengthLong), Label: "Long"},
}

// LanguageOptions are the summary and transcript languages offered by the settings form.
var LanguageOptions = []Option{
	{Value: "en", Label: "English"},
	{Value: "es", Label: "Spanish"},
	{Value: "fr", Label: "French"},
	{Value: "de", Label: "German"},
	{Value: "zh", Label: "Chinese"},
	{Value: "ja", Label: "Japanese"},
	{Value: "ko", Label: "Korean"},
	{Value: "ru", Label: "Russian"},
	{Value: "ar", Label: "Arabic"},
	{Value: "hi", Label: "Hindi"},
}

// SettingsOptions groups every option list for the settings form.
type SettingsOptions struct {
	Lengths    []Option `json:"lengths"`
	FocusAreas []Option `json:"focusAreas"`
	Languages  []Option `json:"languages"`
}
