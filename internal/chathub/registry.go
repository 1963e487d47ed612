package chathub

import "sync"

// Registry tracks live connections per user and presence subscriptions per
// target user. Every presence transition is decided under mu, so concurrent
// connects and disconnects of one user produce exactly one online and one
// offline transition. Callers deliver the returned watchers outside the lock.
type Registry struct {
	mu sync.Mutex

	conns    map[uint]map[string]Client // userID -> connID -> client
	watchers map[uint]map[string]Client // target userID -> connID -> watcher
	watching map[string]map[uint]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns:    make(map[uint]map[string]Client),
		watchers: make(map[uint]map[string]Client),
		watching: make(map[string]map[uint]struct{}),
	}
}

// Add registers c. first is true when c is its user's only connection;
// watchers is then the snapshot of connections subscribed to that user.
func (r *Registry) Add(c Client) (first bool, watchers []Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid := c.GetUserID()
	set, ok := r.conns[uid]
	if !ok {
		set = make(map[string]Client)
		r.conns[uid] = set
	}
	if _, dup := set[c.GetConnID()]; dup {
		return false, nil
	}
	set[c.GetConnID()] = c

	if len(set) != 1 {
		return false, nil
	}
	return true, r.watchersOf(uid, "")
}

// Remove unregisters c and drops every subscription it held. last is true
// when c was its user's final connection. Removing an unknown client is a no-op.
func (r *Registry) Remove(c Client) (last bool, watchers []Client) {
	r.mu.Lock()
	defer r.mu.Unlock()

	uid, cid := c.GetUserID(), c.GetConnID()
	set, ok := r.conns[uid]
	if !ok {
		return false, nil
	}
	if _, ok := set[cid]; !ok {
		return false, nil
	}
	delete(set, cid)

	for target := range r.watching[cid] {
		if ws := r.watchers[target]; ws != nil {
			delete(ws, cid)
			if len(ws) == 0 {
				delete(r.watchers, target)
			}
		}
	}
	delete(r.watching, cid)

	if len(set) > 0 {
		return false, nil
	}
	delete(r.conns, uid)
	return true, r.watchersOf(uid, cid)
}

// Watch subscribes c to target's presence changes and returns target's
// current presence in the same critical section. Unregistered clients get
// the presence answer without a subscription.
func (r *Registry) Watch(c Client, target uint) (online bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	online = len(r.conns[target]) > 0

	cid := c.GetConnID()
	if _, live := r.conns[c.GetUserID()][cid]; !live {
		return online
	}

	ws, ok := r.watchers[target]
	if !ok {
		ws = make(map[string]Client)
		r.watchers[target] = ws
	}
	ws[cid] = c

	targets, ok := r.watching[cid]
	if !ok {
		targets = make(map[uint]struct{})
		r.watching[cid] = targets
	}
	targets[target] = struct{}{}
	return online
}

// Connections returns a snapshot of userID's live connections.
func (r *Registry) Connections(userID uint) []Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	set := r.conns[userID]
	out := make([]Client, 0, len(set))
	for _, c := range set {
		out = append(out, c)
	}
	return out
}

func (r *Registry) IsOnline(userID uint) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns[userID]) > 0
}

// All returns every live connection.
func (r *Registry) All() []Client {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Client
	for _, set := range r.conns {
		for _, c := range set {
			out = append(out, c)
		}
	}
	return out
}

// Stats returns the number of live connections and online users.
func (r *Registry) Stats() (connections, users int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, set := range r.conns {
		connections += len(set)
	}
	return connections, len(r.conns)
}

// watchersOf must be called with mu held. exclude skips one connection.
func (r *Registry) watchersOf(target uint, exclude string) []Client {
	ws := r.watchers[target]
	out := make([]Client, 0, len(ws))
	for cid, c := range ws {
		if cid != exclude {
			out = append(out, c)
		}
	}
	return out
}
