package player

// updateSkipWindows recomputes the skip prompts for position t. The
// prompts follow the windows exactly, with no hysteresis.
func (p *Player) updateSkipWindows(t float64) {
	p.state.ShowSkipIntro = p.props.Intro.Contains(t)
	p.state.ShowSkipOutro = p.props.Outro.Contains(t)
}

// SkipIntro seeks to the end of the intro window.
func (p *Player) SkipIntro() {
	if p.disposed || p.props.Intro == nil {
		return
	}
	p.seekTo("player.SkipIntro", p.props.Intro.End)
}

// SkipOutro moves on to the next episode.
func (p *Player) SkipOutro() {
	p.Next()
}

// Next asks the host for the next episode.
func (p *Player) Next() {
	if p.disposed || p.props.OnNext == nil {
		return
	}
	p.resetAutoAdvance()
	p.props.OnNext()
}

// Previous asks the host for the previous episode.
func (p *Player) Previous() {
	if p.disposed || p.props.OnPrevious == nil {
		return
	}
	p.props.OnPrevious()
}
