package score

// DemoGame is a minimal sample scoresheet exercising every objective kind.
func DemoGame() *Template {
	return NewTemplate("Demo Game").
		Section("Autonomous").
		Enum("Parked", []int{0, 4, 8}, []string{"No Park", "Partial Park", "Fully Park"}).
		Section("TeleOp").
		Numeric("Balls Scored", 10).
		Numeric("Cubes Scored", 15).
		Section("End Game").
		Boolean("Flipped Over Other Robot", 100).
		Section("Penalties").
		Numeric("Penalties", -10)
}

// BallBlast is the 2023 Ball Blast game scoresheet.
func BallBlast() *Template {
	return NewTemplate("Ball Blast").
		Section("Autonomous").
		Enum("Preload",
			[]int{0, 5, 10},
			[]string{"Didn't Blast", "Side Blasted", "Front Blasted"}).
		Enum("Parked",
			[]int{0, 5, 10, 5, 10},
			[]string{"Didn't Park", "Partially Parked Supply", "Fully Parked Supply", "Parked Side Ramp", "Parked Front Ramp"}).
		Section("TeleOp").
		Numeric("Side Blasts", 5).
		Numeric("Front Blasts", 10).
		Section("End Game").
		Boolean("Cup Dunk (Manual Blast)", 25).
		Enum("Sharing Lander",
			[]int{0, 40, 50, 40},
			[]string{"Didn't Land", "Solo Lander", "Shared: First To Land", "Shared: Second To Land"}).
		Boolean("Dropped Beacon", 20).
		Enum("End Parked",
			[]int{0, 5, 10, 10, 15},
			[]string{"Didn't Park", "Partially Parked Supply", "Fully Parked Supply", "Parked Front Ramp", "Parked Side Ramp"}).
		Section("Penalties").
		Numeric("Opposing Alliance Minor Penalties", 5).
		Numeric("Opposing Alliance Major Penalties", 10)
}
