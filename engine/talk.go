package engine

import (
	"fmt"

	"github.com/nathoo/gamedisk/engine/dialogue"
	"github.com/nathoo/gamedisk/engine/hooks"
	"github.com/nathoo/gamedisk/engine/parser"
	"github.com/nathoo/gamedisk/engine/resolve"
	"github.com/nathoo/gamedisk/engine/state"
	"github.com/nathoo/gamedisk/types"
)

// talk starts a conversation, optionally selecting a topic straight away
// ("ask archivist about tower").
func (e *Engine) talk(phrase, topic string) error {
	d := e.Disk
	var c *types.Character

	if phrase == "" {
		here := state.CharactersIn(d, d.RoomID)
		if len(here) != 1 {
			e.println("Talk to whom?")
			return nil
		}
		c = here[0]
	} else {
		m, err := resolve.Resolve(d, phrase, resolve.ScopeCharacters|resolve.ScopeItems)
		if err != nil {
			e.notHere("talk", phrase, err)
			return nil
		}
		if m.Kind != resolve.KindCharacter {
			e.println(fmt.Sprintf("The %s has nothing to say.", itemName(m.Item)))
			return nil
		}
		c = m.Character
	}

	if d.Conversant != "" && d.Conversant != c.ID {
		e.endConversation(false)
	}
	if d.Conversant != c.ID {
		d.Conversant = c.ID
		e.emit("conversation_started", map[string]any{"character": c.ID})
		if c.OnTalk != "" {
			e.println(c.OnTalk)
		} else {
			e.println(fmt.Sprintf("You approach %s.", characterName(c)))
		}
	}

	if topic != "" {
		t, ok := dialogue.Find(c, topic)
		if !ok {
			e.println(fmt.Sprintf("%s has nothing to say about that.", characterName(c)))
			return e.offer(c)
		}
		return e.selectTopic(c, t)
	}
	return e.offer(c)
}

// converse handles input while a conversation is active. It reports false
// when the input is not a conversation action; the conversation has then
// ended and the input should be processed as a normal command.
func (e *Engine) converse(input string, intent types.Intent) (bool, error) {
	d := e.Disk
	c := state.CharacterByID(d, d.Conversant)
	if c == nil || c.Inactive || c.RoomID != d.RoomID {
		e.endConversation(false)
		return false, nil
	}

	if dialogue.IsLeave(input) {
		e.endConversation(true)
		return true, nil
	}
	if t, ok := dialogue.Find(c, input); ok {
		return true, e.selectTopic(c, t)
	}
	// "ask about X" while already talking.
	if intent.Verb == parser.Talk && intent.Object == "" && intent.Target != "" {
		if t, ok := dialogue.Find(c, intent.Target); ok {
			return true, e.selectTopic(c, t)
		}
	}

	e.endConversation(false)
	return false, nil
}

// selectTopic prints the topic's line, marks it read and runs onSelected.
// The menu is offered again afterwards if the conversation is still going.
func (e *Engine) selectTopic(c *types.Character, t *types.Topic) error {
	e.println(t.Line)
	dialogue.MarkRead(c, t.ID)
	e.emit("topic_read", map[string]any{"character": c.ID, "topic": t.ID})

	if err := e.invoke(t.OnSelected, hooks.Target{Hook: hooks.OnSelected, Character: c, Topic: t}); err != nil {
		return err
	}
	if e.Disk.Conversant != c.ID || c.Inactive {
		return nil
	}
	return e.offer(c)
}

// offer prints the eligible topics, ending the conversation when none remain.
func (e *Engine) offer(c *types.Character) error {
	topics := dialogue.Eligible(c)
	if len(topics) == 0 {
		e.println(fmt.Sprintf("%s has nothing more to say.", characterName(c)))
		e.endConversation(false)
		return nil
	}
	e.Disk.Conversation = dialogue.IDs(topics)
	e.println(dialogue.Menu(c)...)
	return nil
}

// endConversation returns the dialogue state machine to idle.
func (e *Engine) endConversation(announce bool) {
	d := e.Disk
	if d.Conversant == "" {
		return
	}
	id := d.Conversant
	d.Conversant = ""
	d.Conversation = nil
	if announce {
		e.println("You end the conversation.")
	}
	e.emit("conversation_ended", map[string]any{"character": id})
}
