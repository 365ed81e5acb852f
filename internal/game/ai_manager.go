package game

import "sort"

func (r *Room) updateAI() {
	if len(r.Bots) == 0 {
		return
	}
	now := r.Now
	actors := make([]EntityID, 0, len(r.Bots))
	for id := range r.Bots {
		actors = append(actors, id)
	}
	sort.Slice(actors, func(i, j int) bool { return actors[i].Index < actors[j].Index })
	for _, id := range actors {
		agent := r.Bots[id]
		if agent == nil || agent.Behavior == nil {
			continue
		}
		if !r.World.Live(agent.Actor) {
			continue
		}
		if !agent.ready(now) {
			continue
		}
		ctx := buildAIContext(r, agent)
		cmds := agent.Behavior.Plan(ctx)
		agent.planned(now)
		for _, cmd := range cmds {
			if cmd == nil {
				continue
			}
			cmd.apply(r, agent)
		}
	}
}
