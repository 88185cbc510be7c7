package help

// ColdstartYAML is printed by `readtime coldstart`.
const ColdstartYAML = `# readtime Quick Start

stores:
  memory: "In-process only, gone when the command exits"
  sqlite: "File database, see --db (default store; readtime.db next to the binary)"
  redis: "Shared hash per namespace, see --redis-addr"

commands:
  inspect_file: |
    readtime inspect --file article.html --url https://example.com/post

  inspect_url: |
    readtime inspect --url https://example.com/post

  progress: |
    readtime progress --scroll 600 --doc-height 2000 --viewport-height 800
    readtime progress --scroll 900 --doc-height 4000 --viewport-height 800 --top 400 --bottom 2400

  save: |
    readtime --store sqlite save --url https://example.com/post --title "A post" --progress 40 --reading-time 8

  simulate: |
    readtime --store sqlite simulate --file article.html --url https://example.com/post --steps 10

  library: |
    readtime --store sqlite list --filter reading
    readtime --store sqlite list --search example.com
    readtime --store sqlite get https://example.com/post
    readtime --store sqlite delete https://example.com/post
    readtime --store sqlite stats

settings_file:
  reading_speed: "words per minute, default 200"
  show_badge: "print the reading-time badge, default true"
  show_progress_bar: "report progress updates, default true"
  show_resume_notification: "offer to resume between 10% and 95%, default true"

thresholds:
  saved_above: "5% progress"
  completed_at: "90% progress"
  capacity: "100 most recently read articles per namespace"
`
