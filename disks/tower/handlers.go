package tower

import (
	"slices"
	"strings"

	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

func handlers() *hooks.Registry {
	reg := hooks.NewRegistry()

	reg.Register("tower.onLoad", hooks.Say("Somewhere above, something heavy shifts in its sleep."))

	reg.Register("fountain.onUse", hooks.Say("You trail your fingers through the fountain. Cold water splashes your sleeve."))
	reg.Register("coins.onLook", lookCoins)
	reg.Register("coin.onTake", takeCoin)
	reg.Register("coin.onUse", hooks.ByRoom(map[string]hooks.Handler{
		Foyer:            hooks.Say("You weigh the coin over the fountain, then think better of it."),
		MoonlightChamber: wakeStatue,
	}, hooks.Say("The coin glints, but nothing here seems to want it.")))

	reg.Register("dais.onUse", useDais)
	reg.Register("brazier.onLook", lookBrazier)
	reg.Register("basin.onTake", takeBasin)
	reg.Register("lever.onUse", pullLever)

	reg.Register("mirror.onUse", useMirror)
	reg.Register("gallery.onEnter", enterGallery)
	reg.Register("telescope.onUse", hooks.Say("The stars wheel overhead. One of them winks at you."))

	reg.Register("archivist.earth", giveEarthToken)
	reg.Register("statue.farewell", statueFarewell)

	reg.Register("tokens.onTaken", tokenTaken)
	return reg
}

// lookCoins reveals the gold coin the first time the coins are examined.
// The room flag is set to false on discovery and true once the coin is taken,
// so a second look never spawns another coin.
func lookCoins(ctx hooks.Context, t hooks.Target) error {
	taken, err := ctx.RoomFlag(Foyer, RoomFlagCoinTaken)
	if err != nil {
		return err
	}
	if taken != nil {
		ctx.Println("Copper coins, green with age. Nothing else of value.")
		return nil
	}
	if err := ctx.SetRoomFlag(Foyer, RoomFlagCoinTaken, false); err != nil {
		return err
	}
	if _, err := ctx.Spawn("gold_coin", state.RoomContainer(Foyer)); err != nil {
		return err
	}
	ctx.Println("Among the coppers, something gleams: a gold coin.")
	return nil
}

func takeCoin(ctx hooks.Context, t hooks.Target) error {
	room := ctx.CurrentRoom()
	if room == nil || room.ID != Foyer {
		return nil
	}
	return ctx.SetRoomFlag(Foyer, RoomFlagCoinTaken, true)
}

func wakeStatue(ctx hooks.Context, t hooks.Target) error {
	if !ctx.HasItem("gold_coin") {
		ctx.Println("You would have to pick the coin up first.")
		return nil
	}
	if _, err := ctx.RemoveItem(state.Inventory, byID("gold_coin")); err != nil {
		return err
	}
	if _, err := ctx.RemoveItem(state.RoomContainer(MoonlightChamber), byID("statue")); err != nil {
		return err
	}
	ctx.AddCharacter(&types.Character{ID: "statue", RoomID: MoonlightChamber})
	ctx.Println("You press the coin into the statue's palm. It sinks into the stone.")
	ctx.Println("Cracks race across the figure's face, and the statue draws a slow breath.")
	return nil
}

// useDais consumes the four elemental tokens. The tokens leave the
// inventory, so the solved branch cannot run twice.
func useDais(ctx hooks.Context, t hooks.Target) error {
	hasAll := true
	for _, id := range Tokens {
		if !ctx.HasItem(id) {
			hasAll = false
			break
		}
	}

	if !hasAll {
		if ctx.FlagIsSet(FlagElementalPuzzleSolved) {
			ctx.Println("The hollows are dark. The tokens have already been used.")
			return nil
		}
		ctx.Println("Four hollows wait in the dais. You need all four elemental tokens.")
		return nil
	}

	if _, err := ctx.RemoveItem(state.Inventory, func(it *types.Item) bool {
		return slices.Contains(Tokens, it.ID)
	}); err != nil {
		return err
	}
	if err := ctx.AddExit(ElementHall, &types.Exit{
		Dir: []string{"northwest", "nw"},
		ID:  MoonlightChamber,
	}); err != nil {
		return err
	}
	if err := ctx.Unblock(ElementHall, "up"); err != nil {
		return err
	}
	ctx.SetFlag(FlagElementalPuzzleSolved, true)

	ctx.Println("You set the four tokens into their hollows. They flare and sink out of sight.")
	ctx.Println("The seal over the stairway shatters, and a passage grinds open to the northwest.")
	return nil
}

func lookBrazier(ctx hooks.Context, t hooks.Target) error {
	room, err := ctx.Room(FireShrine)
	if err != nil {
		return err
	}
	for _, it := range room.Items {
		if it.ID == "fire_token" && it.IsHidden {
			if err := ctx.Reveal(FireShrine, "fire_token"); err != nil {
				return err
			}
			ctx.Println("You stir the coals. An ember token glows among them.")
			return nil
		}
	}
	ctx.Println("The coals tick and settle.")
	return nil
}

func takeBasin(ctx hooks.Context, t hooks.Target) error {
	ctx.Println("You heave at the basin. It is carved from the floor itself and does not budge.")
	return hooks.ErrCancel
}

func pullLever(ctx hooks.Context, t hooks.Target) error {
	pulled, err := ctx.RoomFlag(WaterShrine, RoomFlagLeverPulled)
	if err != nil {
		return err
	}
	if pulled == true {
		ctx.Println("The lever is stuck fast in the down position.")
		return nil
	}
	if err := ctx.SetRoomFlag(WaterShrine, RoomFlagLeverPulled, true); err != nil {
		return err
	}
	if _, err := ctx.Spawn("water_token", state.RoomContainer(WaterShrine)); err != nil {
		return err
	}
	ctx.Println("The lever clanks down. Water drains from the basin, leaving a wave token behind.")
	return nil
}

func useMirror(ctx hooks.Context, t hooks.Target) error {
	if ctx.FlagIsSet(FlagIllusionPathFound) {
		ctx.Println("The mirror ripples, but the portal is already open.")
		return nil
	}
	ctx.SetFlag(FlagIllusionPathFound, true)
	if err := ctx.Unblock(IllusionGallery, "portal"); err != nil {
		return err
	}
	ctx.Println("You step toward the empty mirror. Your reflection hesitates, then steps aside.")
	ctx.Println("A portal shimmers open in the glass.")
	return nil
}

// enterGallery restores the open portal when the path was found earlier,
// including in a session that has since been saved and loaded.
func enterGallery(ctx hooks.Context, t hooks.Target) error {
	if !ctx.FlagIsSet(FlagIllusionPathFound) {
		return nil
	}
	ex, err := ctx.Exit(IllusionGallery, "portal")
	if err != nil {
		return err
	}
	if ex.Block == "" {
		return nil
	}
	if err := ctx.Unblock(IllusionGallery, "portal"); err != nil {
		return err
	}
	ctx.Println("The portal shimmers open, just as you left it.")
	return nil
}

func giveEarthToken(ctx hooks.Context, t hooks.Target) error {
	if ctx.HasItem("earth_token") {
		return nil
	}
	if _, err := ctx.Spawn("earth_token", state.Inventory); err != nil {
		return err
	}
	ctx.Println("The Archivist presses a clay token into your hand.")
	return nil
}

func statueFarewell(ctx hooks.Context, t hooks.Target) error {
	ctx.Println("The guardian settles back into stillness.")
	return ctx.RemoveCharacter("statue")
}

func tokenTaken(ctx hooks.Context, t hooks.Target) error {
	if t.Event == nil {
		return nil
	}
	id, _ := t.Event.Data["item"].(string)
	if strings.HasSuffix(id, "_token") {
		ctx.Println("The token hums faintly against your palm.")
	}
	return nil
}

func byID(id string) func(*types.Item) bool {
	return func(it *types.Item) bool { return it.ID == id }
}
