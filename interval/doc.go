/*Package interval provides low-level sorted-endpoint search primitives for
  genomic coordinates. It assumes every position fits in a PosType, which is
  currently defined as int32 since that's what BAM files are limited to.

  region.Index uses PosType for its interval coordinates; its own sorted,
  max-end-augmented search answers "which features overlap this block"
  queries.
*/
package interval
