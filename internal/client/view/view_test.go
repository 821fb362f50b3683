package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouter_StartsHome(t *testing.T) {
	r := New()
	assert.Equal(t, Home, r.Current())
	assert.False(t, r.Admin())
	assert.False(t, r.ChatWidget())
}

func TestRouter_NavigateReturnsPrevious(t *testing.T) {
	r := New()
	assert.Equal(t, Home, r.Navigate(Recipes))
	assert.Equal(t, Recipes, r.Navigate(Home))
	assert.Equal(t, Home, r.Current())
}

func TestRouter_UnknownViewIgnored(t *testing.T) {
	r := New()
	r.Navigate(Recipes)
	r.Navigate("letters")
	assert.Equal(t, Recipes, r.Current())
}

func TestRouter_ChatViewClosesWidget(t *testing.T) {
	r := New()
	r.SetChatWidget(true)
	assert.True(t, r.ChatWidget())

	r.Navigate(Chat)

	assert.False(t, r.ChatWidget())
}

func TestRouter_WidgetCannotOpenOverChatView(t *testing.T) {
	r := New()
	r.Navigate(Chat)

	r.SetChatWidget(true)
	assert.False(t, r.ChatWidget())

	r.ToggleChatWidget()
	assert.False(t, r.ChatWidget())

	r.Navigate(Home)
	r.ToggleChatWidget()
	assert.True(t, r.ChatWidget())
}

func TestRouter_ExclusivityHoldsForAnySequence(t *testing.T) {
	r := New()
	ops := []func(){
		func() { r.Navigate(Chat) },
		func() { r.SetChatWidget(true) },
		func() { r.ToggleChatWidget() },
		func() { r.Navigate(Recipes) },
		func() { r.ToggleChatWidget() },
		func() { r.Navigate(Chat) },
		func() { r.SetAdmin(true) },
		func() { r.Navigate(Home) },
	}
	for i := 0; i < 200; i++ {
		ops[(i*7+i/3)%len(ops)]()
		if r.Current() == Chat {
			assert.False(t, r.ChatWidget(), "step %d", i)
		}
	}
}

func TestRouter_AdminIndependentOfView(t *testing.T) {
	r := New()
	r.SetAdmin(true)
	r.Navigate(Recipes)
	assert.True(t, r.Admin())
	r.SetAdmin(false)
	assert.False(t, r.Admin())
}

func TestRouter_Reset(t *testing.T) {
	r := New()
	r.Navigate(Recipes)
	r.SetAdmin(true)
	r.SetChatWidget(true)

	r.Reset()

	assert.Equal(t, Home, r.Current())
	assert.False(t, r.Admin())
	assert.False(t, r.ChatWidget())
}
