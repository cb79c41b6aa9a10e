package player

import (
	stderrors "errors"

	"github.com/go-drift/player/pkg/errors"
)

// ToggleSettings opens or closes the settings panel on its main page.
func (p *Player) ToggleSettings() {
	if p.disposed {
		return
	}
	p.state.SettingsOpen = !p.state.SettingsOpen
	p.state.SettingsTab = TabMain
	p.notify()
}

// OpenSettingsTab opens the panel on tab.
func (p *Player) OpenSettingsTab(tab SettingsTab) {
	if p.disposed {
		return
	}
	p.state.SettingsOpen = true
	p.state.SettingsTab = tab
	p.notify()
}

// SettingsBack returns from a sub-page to the main page.
func (p *Player) SettingsBack() {
	if p.disposed || !p.state.SettingsOpen || p.state.SettingsTab == TabMain {
		return
	}
	p.state.SettingsTab = TabMain
	p.notify()
}

// CloseSettings closes the panel and resets it to the main page.
func (p *Player) CloseSettings() {
	if p.disposed || !p.state.SettingsOpen {
		return
	}
	p.state.SettingsOpen = false
	p.state.SettingsTab = TabMain
	p.notify()
}

// SetStableVoice turns audio compression on or off. The state follows
// the request even when the audio graph could not be built.
func (p *Player) SetStableVoice(on bool) {
	if p.disposed || on == p.state.StableVoice {
		return
	}
	p.state.StableVoice = on
	if on {
		p.voice.Enable()
	} else {
		p.voice.Disable()
	}
	p.notify()
}

// ToggleStableVoice flips stable voice.
func (p *Player) ToggleStableVoice() {
	p.SetStableVoice(!p.state.StableVoice)
}

// StableVoiceActive reports whether the compressor is actually routed.
func (p *Player) StableVoiceActive() bool {
	return p.voice.Active()
}

// ActiveQualityOption returns the option matching Props.ActiveQuality,
// falling back to the first option.
func (p *Player) ActiveQualityOption() (QualityOption, bool) {
	return findQuality(p.props.QualityOptions, p.props.ActiveQuality)
}

// Servers lists the mirrors of the active quality.
func (p *Player) Servers() []ServerOption {
	q, ok := p.ActiveQualityOption()
	if !ok {
		return nil
	}
	return q.Servers
}

func findQuality(options []QualityOption, label string) (QualityOption, bool) {
	for _, q := range options {
		if q.Label == label {
			return q, true
		}
	}
	if len(options) > 0 {
		return options[0], true
	}
	return QualityOption{}, false
}

// ResolveSelection picks the quality named label and, within it, the
// server named server, falling back to the first server. It reports false
// when no quality or no server is available.
func ResolveSelection(options []QualityOption, label, server string) (QualityOption, ServerOption, bool) {
	q, ok := findQuality(options, label)
	if !ok || len(q.Servers) == 0 {
		return QualityOption{}, ServerOption{}, false
	}
	for _, s := range q.Servers {
		if s.Name == server {
			return q, s, true
		}
	}
	return q, q.Servers[0], true
}

// SelectQuality switches to another quality, keeping the position.
func (p *Player) SelectQuality(label string) {
	if p.disposed {
		return
	}
	p.beginSwitch()
	if p.props.OnQualityChange != nil {
		p.props.OnQualityChange(label)
		p.notify()
		return
	}
	p.switchTo("player.SelectQuality", label, p.props.ActiveServer)
}

// SelectServer switches to another mirror of the active quality, keeping
// the position.
func (p *Player) SelectServer(name string) {
	if p.disposed {
		return
	}
	p.beginSwitch()
	if p.props.OnServerChange != nil {
		p.props.OnServerChange(name)
		p.notify()
		return
	}
	p.switchTo("player.SelectServer", p.props.ActiveQuality, name)
}

// beginSwitch saves the resume point and closes the panel. The next
// stream to load picks the resume point up.
func (p *Player) beginSwitch() {
	p.pendingResume = &resumePoint{at: p.el.CurrentTime(), play: p.state.Playing}
	p.state.SettingsOpen = false
	p.state.SettingsTab = TabMain
}

func (p *Player) switchTo(op, label, server string) {
	q, s, ok := ResolveSelection(p.props.QualityOptions, label, server)
	if !ok {
		p.pendingResume = nil
		p.report(op, errors.KindMedia, errNoServer)
		p.notify()
		return
	}
	p.props.ActiveQuality = q.Label
	p.props.ActiveServer = s.Name
	if s.StreamURL == p.props.StreamURL {
		p.pendingResume = nil
		p.notify()
		return
	}
	p.props.StreamURL = s.StreamURL
	p.loadSource(s.StreamURL)
	p.notify()
}

var errNoServer = stderrors.New("no server available for selection")
