package model

import "testing"

func TestConversationKeyIsOrderIndependent(t *testing.T) {
	if ConversationKey("alice", "bob") != ConversationKey("bob", "alice") {
		t.Error("key differs depending on participant order")
	}
	if got := ConversationKey("bob", "alice"); got != "alice:bob" {
		t.Errorf("ConversationKey = %q, want alice:bob", got)
	}
}

func TestSortedParticipants(t *testing.T) {
	got := SortedParticipants("zoe", "adam")
	if len(got) != 2 || got[0] != "adam" || got[1] != "zoe" {
		t.Errorf("SortedParticipants = %v, want [adam zoe]", got)
	}
}
