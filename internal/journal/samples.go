package journal

// SampleProfile is the runner the demo journal belongs to.
var SampleProfile = Profile{
	Name:           "Safora",
	Goal:           "Stay consistent with running, build a healthy habit",
	PreferredTimes: "Morning or evening",
	Motivations:    []string{"feeling strong", "stress relief", "seeing progress"},
	Struggles:      []string{"cold weather", "staying motivated alone", "busy schedule"},
}

// SampleRuns seeds the demo journal.
var SampleRuns = []Run{
	{
		ID:         "1",
		Date:       "November 18",
		DistanceKm: 5.2,
		Duration:   "31 min",
		Pace:       "5:58/km",
		Route:      "Field Path",
		Mood:       MoodStrong,
		PhotoNote:  "Power pose! Hands on hips, standing in green field with fence behind, looking confident",
		Memory:     "Felt powerful and strong. That pose says it all!",
		ImageURL:   "https://picsum.photos/seed/run1/600/400",
	},
	{
		ID:         "2",
		Date:       "November 21",
		DistanceKm: 7.1,
		Duration:   "42 min",
		Pace:       "5:52/km",
		Route:      "Hill Route",
		Mood:       MoodHappy,
		PhotoNote:  "Big smile, sunny golden hour light, green hills behind",
		Memory:     "Best run of the week! That golden light made everything better",
		ImageURL:   "https://picsum.photos/seed/run2/600/400",
	},
	{
		ID:         "3",
		Date:       "November 23",
		DistanceKm: 4.0,
		Duration:   "24 min",
		Pace:       "6:05/km",
		Route:      "Quick City Run",
		Mood:       MoodDetermined,
		PhotoNote:  "White sneakers with orange details on pavement",
		Memory:     "Short one but showed up. Sometimes getting out the door is the win",
		ImageURL:   "https://picsum.photos/seed/run3/600/400",
	},
	{
		ID:         "4",
		Date:       "November 25",
		DistanceKm: 6.5,
		Duration:   "38 min",
		Pace:       "5:51/km",
		Route:      "Frosty Morning",
		Mood:       MoodAmazing,
		PhotoNote:  "Bright smile on a cold morning, frosty landscape and blue sky behind",
		Memory:     "Cold outside but warm inside. Winter running is the best!",
		ImageURL:   "https://picsum.photos/seed/run4/600/400",
	},
	{
		ID:         "5",
		Date:       "November 27",
		DistanceKm: 5.7,
		Duration:   "34 min",
		Pace:       "5:58/km",
		Route:      "Park Loop",
		Mood:       MoodTired,
		PhotoNote:  "Eyes closed mid-blink in the park, trees and playground behind",
		Memory:     "Not every run is magic. But I showed up anyway.",
		ImageURL:   "https://picsum.photos/seed/run5/600/400",
	},
}
