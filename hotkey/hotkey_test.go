package hotkey

import (
	"testing"
	"time"
)

func TestFakeDeliversKeyEvents(t *testing.T) {
	var hk Hotkey = NewFake()
	if err := hk.Register(); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	defer hk.Unregister()

	fk := hk.(*FakeHotkey)
	fk.SimKeydown()
	select {
	case <-hk.Keydown():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for keydown")
	}

	fk.SimKeyup()
	select {
	case <-hk.Keyup():
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for keyup")
	}
}

func TestFakeMuteToggleLoop(t *testing.T) {
	fk := NewFake()

	muted := false
	toggles := make(chan bool, 4)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 3; i++ {
			<-fk.Keydown()
			muted = !muted
			toggles <- muted
		}
	}()

	want := []bool{true, false, true}
	for _, w := range want {
		fk.SimKeydown()
		select {
		case got := <-toggles:
			if got != w {
				t.Fatalf("got muted=%t, want %t", got, w)
			}
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for toggle")
		}
	}
	<-done
}
