package models

// GoalHabits maps an onboarding goal to the default habits seeded for it at
// registration.
var GoalHabits = map[string][]Habit{
	"fitness": {
		{Name: "Daily Exercise", Icon: "🏋️", Target: 30, Unit: "minutes", Frequency: "daily", Color: "#FF5733"},
		{Name: "Drink Water", Icon: "💧", Target: 8, Unit: "glasses", Frequency: "daily", Color: "#33A1FD"},
		{Name: "Walk Steps", Icon: "👣", Target: 10000, Unit: "steps", Frequency: "daily", Color: "#4CAF50"},
	},
	"productivity": {
		{Name: "Deep Work", Icon: "🧠", Target: 2, Unit: "hours", Frequency: "daily", Color: "#9C27B0"},
		{Name: "No Social Media", Icon: "📵", Target: 1, Unit: "day", Frequency: "daily", Color: "#607D8B"},
		{Name: "Read", Icon: "📚", Target: 20, Unit: "pages", Frequency: "daily", Color: "#FF9800"},
	},
	"mindfulness": {
		{Name: "Meditation", Icon: "🧘", Target: 10, Unit: "minutes", Frequency: "daily", Color: "#673AB7"},
		{Name: "Gratitude Journal", Icon: "📓", Target: 3, Unit: "items", Frequency: "daily", Color: "#E91E63"},
		{Name: "Sleep", Icon: "😴", Target: 8, Unit: "hours", Frequency: "daily", Color: "#3F51B5"},
	},
	"learning": {
		{Name: "Study", Icon: "📝", Target: 1, Unit: "hour", Frequency: "daily", Color: "#009688"},
		{Name: "New Skill Practice", Icon: "🔧", Target: 30, Unit: "minutes", Frequency: "daily", Color: "#795548"},
		{Name: "Listen to Podcast", Icon: "🎧", Target: 1, Unit: "episode", Frequency: "daily", Color: "#CDDC39"},
	},
}
