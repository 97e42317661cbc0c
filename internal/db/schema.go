package db

// SchemaSQL contains the journal_entry table definition. Crisis fields are
// option<> types because records written by the legacy service carry only
// the crisis_detected boolean.
const SchemaSQL = `
    DEFINE TABLE IF NOT EXISTS journal_entry SCHEMAFULL;
    DEFINE FIELD IF NOT EXISTS entry_id ON journal_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS user_id ON journal_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS created_at ON journal_entry TYPE datetime DEFAULT time::now();
    DEFINE FIELD IF NOT EXISTS encrypted_raw_text ON journal_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS encrypted_normalized_text ON journal_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS encrypted_insights ON journal_entry TYPE string;
    DEFINE FIELD IF NOT EXISTS emotions ON journal_entry TYPE object FLEXIBLE;
    DEFINE FIELD IF NOT EXISTS patterns ON journal_entry TYPE array<string>;
    DEFINE FIELD IF NOT EXISTS crisis_detected ON journal_entry TYPE bool DEFAULT false;
    DEFINE FIELD IF NOT EXISTS crisis_level ON journal_entry TYPE option<int>;
    DEFINE FIELD IF NOT EXISTS crisis_indicators ON journal_entry TYPE option<array<string>>;
    DEFINE FIELD IF NOT EXISTS crisis_reasoning ON journal_entry TYPE option<string>;
    DEFINE FIELD IF NOT EXISTS embedding_vector ON journal_entry TYPE option<array<float>>;
    DEFINE FIELD IF NOT EXISTS tags ON journal_entry TYPE array<string> DEFAULT [];
    DEFINE FIELD IF NOT EXISTS metadata ON journal_entry TYPE option<object> FLEXIBLE;

    DEFINE INDEX IF NOT EXISTS journal_entry_id ON journal_entry FIELDS entry_id UNIQUE;
    DEFINE INDEX IF NOT EXISTS journal_entry_user ON journal_entry FIELDS user_id;
    DEFINE INDEX IF NOT EXISTS journal_entry_user_created ON journal_entry FIELDS user_id, created_at;
`
