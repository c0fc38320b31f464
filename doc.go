// Package oslocache maps declarative cache configuration onto a live,
// backend-bound cache region and wraps function calls with argument-keyed
// memoization.
//
// Components:
//   - Registry: symbolic backend name -> factory. noop, dict, memcache_pool
//     and mongo are pre-registered; further backends (redis sentinel,
//     ristretto, bigcache) register through the same API.
//   - Config: typed configuration section, loadable from YAML/JSON bytes.
//     BuildConfigMap flattens it into "<prefix>.backend",
//     "<prefix>.expiration_time" and "<prefix>.arguments.<name>" entries.
//   - Region: the backend-bound handle. Configure resolves the backend,
//     picks the key mangler and stacks the proxy chain once; after that every
//     get/set/delete passes through the chain unchanged.
//   - Memoizer: per call-site caching policy (group caching flag, TTL
//     override) plus generic Memoize wrappers.
//
// Usage:
//
//	cfg, _ := oslocache.LoadConfig(raw, oslocache.FormatYAML)
//	reg := oslocache.NewRegistry()
//	region := oslocache.CreateRegion()
//	if _, err := oslocache.ConfigureRegion(cfg, reg, region); err != nil {
//		return err
//	}
//	m := oslocache.NewMemoizer(cfg, region, "users", "")
//	loadUser = oslocache.Memoize(m, "users", "LoadUser", codec.JSON[User]{}, loadUser)
//
// A miss is reported out of band as ok=false on the read path; a cached nil
// or empty payload is a legitimate hit and is never confused with absence.
package oslocache
