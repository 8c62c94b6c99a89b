package dictionary

// Compiled-in code tables, version 1.0. Codes follow the national
// earthquake disaster reporting scheme the upstream feeds use: source and
// disaster are two-level (1-digit category + 2-digit sub-category), carrier
// is a single digit, indicator is three digits.

var sourceCategories = []Category{
	{
		Code: "1", Name: "Official response systems",
		Subs: []Entry{
			{Code: "00", Name: "Forward earthquake command post"},
			{Code: "01", Name: "Rear earthquake command post"},
			{Code: "20", Name: "Emergency command technical system"},
			{Code: "21", Name: "Social service engineering rescue system"},
			{Code: "40", Name: "Hazard zone pre-assessment group"},
			{Code: "41", Name: "Emergency response coordination group"},
			{Code: "42", Name: "Post-quake government information support group"},
			{Code: "80", Name: "Rapid damage report intake system"},
			{Code: "81", Name: "Local seismological bureau service systems"},
			{Code: "99", Name: "Other official systems"},
		},
	},
	{
		Code: "2", Name: "Sensing networks",
		Subs: []Entry{
			{Code: "00", Name: "Internet sensing"},
			{Code: "01", Name: "Telecom network sensing"},
			{Code: "02", Name: "Public opinion sensing"},
			{Code: "03", Name: "Power grid sensing"},
			{Code: "04", Name: "Transport network sensing"},
			{Code: "05", Name: "Other sensing"},
		},
	},
	{
		Code: "3", Name: "Other sources",
		Subs: []Entry{
			{Code: "00", Name: "Other data"},
		},
	},
}

var carrierEntries = []Entry{
	{Code: "0", Name: "Text"},
	{Code: "1", Name: "Image"},
	{Code: "2", Name: "Audio"},
	{Code: "3", Name: "Video"},
	{Code: "4", Name: "Other"},
}

// Disaster categories start at 2: category 1 is reserved for the seismic
// event description itself, which is not reported through this pipeline.
var disasterCategories = []Category{
	{
		Code: "2", Name: "Casualties",
		Subs: []Entry{
			{Code: "01", Name: "Deaths"},
			{Code: "02", Name: "Injuries"},
			{Code: "03", Name: "Missing persons"},
		},
	},
	{
		Code: "3", Name: "Housing damage",
		Subs: []Entry{
			{Code: "01", Name: "Earth-and-timber structures"},
			{Code: "02", Name: "Brick-and-timber structures"},
			{Code: "03", Name: "Brick-and-concrete structures"},
			{Code: "04", Name: "Frame structures"},
			{Code: "05", Name: "Other structures"},
		},
	},
	{
		Code: "4", Name: "Lifeline damage",
		Subs: []Entry{
			{Code: "01", Name: "Transportation"},
			{Code: "02", Name: "Water supply"},
			{Code: "03", Name: "Oil pipelines"},
			{Code: "04", Name: "Gas supply"},
			{Code: "05", Name: "Electric power"},
			{Code: "06", Name: "Telecommunications"},
			{Code: "07", Name: "Water conservancy"},
		},
	},
	{
		Code: "5", Name: "Secondary disasters",
		Subs: []Entry{
			{Code: "01", Name: "Rockfall"},
			{Code: "02", Name: "Landslide"},
			{Code: "03", Name: "Debris flow"},
			{Code: "04", Name: "Karst collapse"},
			{Code: "05", Name: "Tsunami"},
			{Code: "06", Name: "Typhoon"},
			{Code: "07", Name: "Earthquake"},
			{Code: "08", Name: "Other secondary disasters"},
		},
	},
}

var indicatorEntries = []Entry{
	{Code: "001", Name: "Affected quantity"},
	{Code: "002", Name: "Affected extent"},
	{Code: "003", Name: "Impact severity"},
	{Code: "004", Name: "Lightly damaged area"},
	{Code: "005", Name: "Severely damaged area"},
}
