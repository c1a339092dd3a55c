// Package server provides HTTP routing, middleware, and the REST and socket API over movies and favorites.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] method patterns internally. Middleware wraps the
// whole mux: [RequestID], [RequestLogger], [Recoverer] and [CORS].
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
//
// # Routes
//
//	GET  /api/movies/trending
//	GET  /api/movies/search?q=&page=
//	GET  /api/movies/discover?q=&page=&year=&genre=&min_rating=&sort_by=
//	GET  /api/movies/{id}
//	GET  /api/genres
//	GET  /api/favorites[?details=true]
//	GET  /api/favorites/{id}
//	POST /api/favorites/{id}/toggle
//	GET  /ws/favorites
//
// # Favorites Sockets
//
// [SocketHub] opens a storage context and a [favorites.Store] per connection. Clients send
// {"action":"toggle","id":550}; the server replies with {"type":"favorites","ids":[...]} after the
// connection opens, after each toggle, and whenever another context changes the set. REST toggles are
// made through their own context and so reach every socket.
package server
