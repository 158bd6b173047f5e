// Package tower is the built-in sample disk: a wizard's tower whose puzzles
// cover hidden items, vetoed takes, gated dialogue, runtime exits and a
// statue that becomes a character.
package tower

import (
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// Name is the disk's registry name.
const Name = "tower"

// Room ids referenced by handlers.
const (
	Foyer            = "foyer"
	Library          = "library"
	ElementHall      = "element_hall"
	FireShrine       = "fire_shrine"
	WaterShrine      = "water_shrine"
	AirShrine        = "air_shrine"
	MoonlightChamber = "moonlight_chamber"
	IllusionGallery  = "illusion_gallery"
	Observatory      = "observatory"
)

// Flags set by the disk.
const (
	FlagElementalPuzzleSolved = "elementalPuzzleSolved"
	FlagIllusionPathFound     = "illusionPathFound"
	RoomFlagCoinTaken         = "coinTaken"
	RoomFlagLeverPulled       = "leverPulled"
)

// Tokens holds the ids of the four elemental tokens the dais consumes.
var Tokens = []string{"fire_token", "water_token", "air_token", "earth_token"}

// Epilogue is the external terminus of the observatory door.
const Epilogue = "https://gamedisk.example/tower/epilogue"

// New builds a fresh tower disk and its handlers. It satisfies
// engine.Factory.
func New() (*types.Disk, *hooks.Registry, error) {
	d := state.NewDisk(types.GameDef{
		Title:   "The Tower",
		Author:  "gamedisk",
		Version: "1.0",
		Start:   Foyer,
		Intro:   "Rain drives you through the tower door. It swings shut behind you.",
	})
	d.OnLoad = "tower.onLoad"
	d.Rooms = rooms()
	d.Characters = characters()
	d.Templates = templates()
	d.Listeners = map[string][]string{
		"item_taken": {"tokens.onTaken"},
	}
	state.Normalize(d)
	return d, handlers(), nil
}

func rooms() []*types.Room {
	return []*types.Room{
		{
			ID:   Foyer,
			Name: "Foyer",
			Desc: "A round hall of cold stone. A fountain murmurs in the middle, its basin glinting with coins.",
			Exits: []*types.Exit{
				{Dir: []string{"north", "n"}, ID: Library},
				{Dir: []string{"east", "e"}, ID: ElementHall},
			},
			Items: []*types.Item{
				{ID: "fountain", Name: []string{"fountain", "basin"}, OnUse: "fountain.onUse",
					Desc: "Water spills from a stone fish into a wide basin."},
				{ID: "coins", Name: []string{"coins", "pile of coins", "coppers"}, OnLook: "coins.onLook"},
			},
		},
		{
			ID:   Library,
			Name: "Library",
			Desc: "Shelves climb into darkness. Dust hangs in the lamplight.",
			Exits: []*types.Exit{
				{Dir: []string{"south", "s"}, ID: Foyer},
			},
			Items: []*types.Item{
				{ID: "ledger", Name: []string{"ledger", "book"}, IsTakeable: true,
					Desc: "A visitor's ledger. The last entry is forty years old."},
			},
		},
		{
			ID:   ElementHall,
			Name: "Hall of Elements",
			Desc: "Four arches open off a hall of black marble. A dais with four hollows stands at its centre.",
			Exits: []*types.Exit{
				{Dir: []string{"west", "w"}, ID: Foyer},
				{Dir: []string{"north", "n"}, ID: FireShrine},
				{Dir: []string{"east", "e"}, ID: WaterShrine},
				{Dir: []string{"south", "s"}, ID: AirShrine},
				{Dir: []string{"up", "u", "stairs"}, ID: IllusionGallery,
					Block: "A shimmering seal bars the stairway."},
			},
			Items: []*types.Item{
				{ID: "dais", Name: []string{"dais", "hollows"}, OnUse: "dais.onUse",
					Desc: "Four hollows: a flame, a wave, a feather and a stone."},
			},
		},
		{
			ID:   FireShrine,
			Name: "Fire Shrine",
			Desc: "Heat shimmers above a brazier of banked coals.",
			Exits: []*types.Exit{
				{Dir: []string{"south", "s"}, ID: ElementHall},
			},
			Items: []*types.Item{
				{ID: "brazier", Name: []string{"brazier", "coals"}, OnLook: "brazier.onLook"},
				{ID: "fire_token", Name: []string{"ember token", "fire token", "ember"}, IsTakeable: true, IsHidden: true,
					Desc: "A token of red glass, warm to the touch."},
			},
		},
		{
			ID:   WaterShrine,
			Name: "Water Shrine",
			Desc: "A carved basin catches water dripping from the ceiling. An iron lever juts from the wall.",
			Exits: []*types.Exit{
				{Dir: []string{"west", "w"}, ID: ElementHall},
			},
			Items: []*types.Item{
				{ID: "stone_basin", Name: []string{"stone basin", "basin"}, OnTake: "basin.onTake",
					Desc: "The basin is carved from the floor itself."},
				{ID: "lever", Name: []string{"lever", "iron lever"}, OnUse: "lever.onUse"},
			},
		},
		{
			ID:   AirShrine,
			Name: "Air Shrine",
			Desc: "Wind howls through slits in the wall.",
			Exits: []*types.Exit{
				{Dir: []string{"north", "n"}, ID: ElementHall},
			},
			Items: []*types.Item{
				{ID: "air_token", Name: []string{"feather token", "air token", "feather"}, IsTakeable: true,
					Desc: "A token of pale glass, lighter than it should be."},
			},
		},
		{
			ID:   MoonlightChamber,
			Name: "Moonlight Chamber",
			Desc: "Moonlight pours through a round window onto a stone figure with an open palm.",
			Exits: []*types.Exit{
				{Dir: []string{"southeast", "se"}, ID: ElementHall},
			},
			Items: []*types.Item{
				{ID: "statue", Name: []string{"statue", "figure", "stone figure"},
					Desc: "Its palm is worn smooth, as if waiting for something."},
			},
		},
		{
			ID:      IllusionGallery,
			Name:    "Illusion Gallery",
			Desc:    "Mirrors line the walls, each showing a slightly different room.",
			OnEnter: "gallery.onEnter",
			Exits: []*types.Exit{
				{Dir: []string{"down", "d"}, ID: ElementHall},
				{Dir: []string{"portal"}, ID: Observatory, Block: "Your reflection steps in front of you, barring the way."},
			},
			Items: []*types.Item{
				{ID: "mirror", Name: []string{"mirror", "tall mirror"}, OnUse: "mirror.onUse",
					Desc: "One mirror shows no reflection of you at all."},
			},
		},
		{
			ID:   Observatory,
			Name: "Observatory",
			Desc: "A brass telescope points at the stars. A narrow door leads out onto the parapet.",
			Exits: []*types.Exit{
				{Dir: []string{"portal", "back"}, ID: IllusionGallery},
				{Dir: []string{"out", "door", "parapet"}, External: Epilogue},
			},
			Items: []*types.Item{
				{ID: "telescope", Name: []string{"telescope", "brass telescope"}, OnUse: "telescope.onUse"},
			},
		},
	}
}

func characters() []*types.Character {
	return []*types.Character{
		{
			ID:     "archivist",
			Name:   []string{"Archivist", "old archivist", "librarian"},
			RoomID: Library,
			Desc:   "A stooped figure in ink-stained robes, peering at you over half-moon spectacles.",
			OnTalk: "The Archivist closes a heavy book. \"Visitors. How unusual.\"",
			Topics: []*types.Topic{
				{ID: "tower", Option: "Ask about the tower",
					Line: "\"The wizard built it to keep things in, not out. The elements hold the stairway shut.\""},
				{ID: "gallery", Option: "Ask about the gallery", Prereqs: []string{"tower"},
					Line: "\"Above the hall, the mirrors. One of them does not lie. Use it, and the way opens.\""},
				{ID: "earth", Option: "Ask for the earth token", RemoveOnRead: true, OnSelected: "archivist.earth",
					Line: "\"Stone is patient. So am I. Here.\""},
			},
		},
		{
			// Dormant until the gold coin wakes the statue.
			ID:       "statue",
			Name:     []string{"statue", "stone figure", "guardian"},
			RoomID:   MoonlightChamber,
			Desc:     "The guardian's stone skin glows faintly in the moonlight.",
			OnTalk:   "The guardian turns its head with a sound like grinding millstones.",
			Inactive: true,
			Topics: []*types.Topic{
				{ID: "moon", Option: "Ask about the moonlight",
					Line: "\"It shows what the mirrors hide. Seek the one without your face.\""},
				{ID: "farewell", Option: "Thank the guardian", RemoveOnRead: true, OnSelected: "statue.farewell",
					Line: "\"Go well. I have waited long enough.\""},
			},
		},
	}
}

func templates() map[string]*types.Item {
	return map[string]*types.Item{
		"gold_coin": {ID: "gold_coin", Name: []string{"gold coin", "coin"}, IsTakeable: true,
			OnTake: "coin.onTake", OnUse: "coin.onUse",
			Desc: "A heavy gold coin stamped with a crescent moon."},
		"water_token": {ID: "water_token", Name: []string{"wave token", "water token", "wave"}, IsTakeable: true,
			Desc: "A token of blue glass. It sloshes faintly when shaken."},
		"earth_token": {ID: "earth_token", Name: []string{"stone token", "earth token", "clay token"}, IsTakeable: true,
			Desc: "A token of dark fired clay."},
	}
}
