package redlock

// Script is a Lua body evaluated atomically by a ServerClient, in the shape
// Redis EVAL/EVALSHA expects: KEYS holds the resource's key list, ARGV holds
// the operation's arguments.
type Script string

// ScriptTransform derives a new Script body from a default one, applied
// once at construction so callers can layer side effects (auditing, custom
// TTL rounding) without re-copying the built-in bodies.
type ScriptTransform func(def Script) Script

// DefaultLockScript sets every key in KEYS to ARGV[1] only if it does not
// already exist, with a pexpire of ARGV[2] ms, and returns the count of keys
// newly set.
const DefaultLockScript Script = `
local set = 0
for i, key in ipairs(KEYS) do
  if redis.call("set", key, ARGV[1], "nx", "px", ARGV[2]) then
    set = set + 1
  end
end
return set
`

// DefaultUnlockScript deletes every key in KEYS whose current value equals
// ARGV[1], and returns the count of keys deleted.
const DefaultUnlockScript Script = `
local deleted = 0
for i, key in ipairs(KEYS) do
  if redis.call("get", key) == ARGV[1] then
    redis.call("del", key)
    deleted = deleted + 1
  end
end
return deleted
`

// DefaultExtendScript resets the pexpire of every key in KEYS to ARGV[2] ms
// if its current value equals ARGV[1], and returns the count of keys whose
// TTL was reset.
const DefaultExtendScript Script = `
local extended = 0
for i, key in ipairs(KEYS) do
  if redis.call("get", key) == ARGV[1] then
    redis.call("pexpire", key, ARGV[2])
    extended = extended + 1
  end
end
return extended
`
