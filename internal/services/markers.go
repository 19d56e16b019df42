package services

import (
	"context"

	"github.com/bgergo/reelcache/internal/database"
	"github.com/bgergo/reelcache/internal/markerstore"
	"github.com/bgergo/reelcache/internal/models"
	"github.com/bgergo/reelcache/pkg/connectivity"
	"github.com/bgergo/reelcache/pkg/logger"
)

// MarkerService reconciles favorite/seen/watchlist flags between the
// remote multi-user collections (when reachable) and the local marker
// collection (always). The local copy is what keeps the flags available
// offline; whichever side was authoritative at read time is persisted
// locally for the next offline session.
//
// Toggles are at-least-once toward the remote: the local write is never
// rolled back when the remote mirror fails.
type MarkerService struct {
	db     database.Database
	remote markerstore.RemoteStore
	online connectivity.Checker
	logger logger.Logger
}

// NewMarkerService creates the synchronizer. remote may be nil, in
// which case every operation behaves as if permanently offline.
func NewMarkerService(db database.Database, remote markerstore.RemoteStore, online connectivity.Checker, log logger.Logger) *MarkerService {
	return &MarkerService{
		db:     db,
		remote: remote,
		online: online,
		logger: log,
	}
}

func (s *MarkerService) remoteReachable() bool {
	return s.remote != nil && s.online.Online()
}

// Marker returns the combined marker triple for a movie. Online, the
// triple is derived from membership across the three remote collections
// and persisted locally as a side effect; offline, it comes from the
// local store.
func (s *MarkerService) Marker(ctx context.Context, movieID int) (models.MovieMarker, error) {
	if !s.remoteReachable() {
		return s.localMarker(movieID), nil
	}

	marker, err := s.remoteMarker(ctx, movieID)
	if err != nil {
		s.logger.Warnf("[Markers] remote read failed for movie %d, using local state: %v", movieID, err)
		return s.localMarker(movieID), nil
	}

	if err := s.db.SaveMarker(movieID, marker); err != nil {
		s.logger.Errorf("[Markers] failed to persist marker for movie %d: %v", movieID, err)
	}
	return marker, nil
}

func (s *MarkerService) remoteMarker(ctx context.Context, movieID int) (models.MovieMarker, error) {
	var marker models.MovieMarker

	fav, err := s.remote.Contains(ctx, markerstore.Favorites, movieID)
	if err != nil {
		return marker, err
	}
	seen, err := s.remote.Contains(ctx, markerstore.AlreadySeen, movieID)
	if err != nil {
		return marker, err
	}
	watch, err := s.remote.Contains(ctx, markerstore.Watchlist, movieID)
	if err != nil {
		return marker, err
	}

	marker.Favorite = fav
	marker.AlreadySeen = seen
	marker.OnWatchList = watch
	return marker, nil
}

func (s *MarkerService) localMarker(movieID int) models.MovieMarker {
	records, err := s.db.GetAllMarkers()
	if err != nil {
		s.logger.Warnf("[Markers] local marker read failed: %v", err)
		return models.MovieMarker{}
	}
	for _, r := range records {
		if r.MovieID == movieID {
			return r.Marker
		}
	}
	return models.MovieMarker{}
}

// Watch subscribes to a movie's marker state: the current value is
// delivered first, followed by updates until ctx is cancelled. Offline
// the channel carries the local value and then stays open.
func (s *MarkerService) Watch(ctx context.Context, movieID int) (<-chan models.MovieMarker, error) {
	out := make(chan models.MovieMarker, 1)

	current, err := s.Marker(ctx, movieID)
	if err != nil {
		return nil, err
	}
	out <- current

	if !s.remoteReachable() {
		go func() {
			<-ctx.Done()
			close(out)
		}()
		return out, nil
	}

	events := make([]<-chan markerstore.Event, 0, len(markerstore.Collections))
	for _, coll := range markerstore.Collections {
		ch, err := s.remote.Watch(ctx, coll)
		if err != nil {
			s.logger.Warnf("[Markers] failed to watch %s: %v", coll, err)
			ch = nil
		}
		events = append(events, ch)
	}

	go s.combine(ctx, movieID, current, events, out)
	return out, nil
}

// combine folds the three collection streams into one marker stream,
// persisting each derived value so the latest known state survives a
// future offline session.
func (s *MarkerService) combine(ctx context.Context, movieID int, state models.MovieMarker, events []<-chan markerstore.Event, out chan<- models.MovieMarker) {
	defer close(out)

	apply := func(ev markerstore.Event) bool {
		if ev.MovieID != movieID {
			return false
		}
		set := !ev.Removed
		switch ev.Collection {
		case markerstore.Favorites:
			state.Favorite = set
		case markerstore.AlreadySeen:
			state.AlreadySeen = set
		case markerstore.Watchlist:
			state.OnWatchList = set
		}
		return true
	}

	for {
		var (
			ev markerstore.Event
			ok bool
		)
		select {
		case ev, ok = <-events[0]:
			if !ok {
				events[0] = nil
				continue
			}
		case ev, ok = <-events[1]:
			if !ok {
				events[1] = nil
				continue
			}
		case ev, ok = <-events[2]:
			if !ok {
				events[2] = nil
				continue
			}
		case <-ctx.Done():
			return
		}

		if !apply(ev) {
			continue
		}
		if err := s.db.SaveMarker(movieID, state); err != nil {
			s.logger.Errorf("[Markers] failed to persist marker for movie %d: %v", movieID, err)
		}
		select {
		case out <- state:
		case <-ctx.Done():
			return
		}
	}
}

// Marked lists the movies carrying one flag: the remote collection
// snapshot when reachable, otherwise the local markers filtered by the
// flag, shaped into the same reference list.
func (s *MarkerService) Marked(ctx context.Context, coll markerstore.Collection) ([]markerstore.MovieRef, error) {
	if s.remoteReachable() {
		refs, err := s.remote.List(ctx, coll)
		if err == nil {
			return refs, nil
		}
		s.logger.Warnf("[Markers] remote list of %s failed, using local state: %v", coll, err)
	}

	records, err := s.db.GetAllMarkers()
	if err != nil {
		return nil, err
	}

	var refs []markerstore.MovieRef
	for _, r := range records {
		var flagged bool
		switch coll {
		case markerstore.Favorites:
			flagged = r.Marker.Favorite
		case markerstore.AlreadySeen:
			flagged = r.Marker.AlreadySeen
		case markerstore.Watchlist:
			flagged = r.Marker.OnWatchList
		}
		if !flagged {
			continue
		}
		ref := markerstore.MovieRef{ID: r.MovieID}
		if movie, err := s.db.GetMovie(r.MovieID); err == nil && movie != nil {
			ref.Title = movie.Title
		}
		refs = append(refs, ref)
	}
	return refs, nil
}

// ToggleFavorite flips the favorite flag on the movie.
func (s *MarkerService) ToggleFavorite(ctx context.Context, sess models.Session, movie *models.Movie) {
	movie.Favorite = !movie.Favorite
	s.applyToggle(ctx, sess, movie, markerstore.Favorites, movie.Favorite)
}

// ToggleAlreadySeen flips the already-seen flag on the movie.
func (s *MarkerService) ToggleAlreadySeen(ctx context.Context, sess models.Session, movie *models.Movie) {
	movie.AlreadySeen = !movie.AlreadySeen
	s.applyToggle(ctx, sess, movie, markerstore.AlreadySeen, movie.AlreadySeen)
}

// ToggleWatchlist flips the watchlist flag on the movie.
func (s *MarkerService) ToggleWatchlist(ctx context.Context, sess models.Session, movie *models.Movie) {
	movie.Watchlist = !movie.Watchlist
	s.applyToggle(ctx, sess, movie, markerstore.Watchlist, movie.Watchlist)
}

// applyToggle persists the new triple locally and mirrors the change to
// the corresponding remote collection when reachable. Failures on
// either side are logged, never surfaced: local state is authoritative
// for the current session.
func (s *MarkerService) applyToggle(ctx context.Context, sess models.Session, movie *models.Movie, coll markerstore.Collection, set bool) {
	marker := models.MovieMarker{
		Favorite:    movie.Favorite,
		AlreadySeen: movie.AlreadySeen,
		OnWatchList: movie.Watchlist,
	}
	if err := s.db.SaveMarker(movie.ID, marker); err != nil {
		s.logger.Errorf("[Markers] failed to persist marker for movie %d: %v", movie.ID, err)
	}

	if !s.remoteReachable() {
		return
	}

	var err error
	if set {
		err = s.remote.Set(ctx, coll, markerstore.MovieRef{
			ID:       movie.ID,
			Title:    movie.Title,
			Username: sess.Username,
		})
	} else {
		err = s.remote.Delete(ctx, coll, movie.ID)
	}
	if err != nil {
		s.logger.Errorf("[Markers] remote mirror of %s for movie %d failed: %v", coll, movie.ID, err)
	}
}
